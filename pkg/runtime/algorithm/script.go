// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.
//

package algorithm

import (
	"runtime"
	"strings"
)

import (
	"github.com/dop251/goja"

	"github.com/pkg/errors"
)

const (
	PropAlgorithmExpression = "algorithm-expression"
	PropAllowRangeQuery     = "allow-range-query-with-inline-sharding"

	_jsEntrypoint = "__compute__"
	_jsContext    = "$ctx"
)

// inlineTemplate renders an inline expression such as 't_order_${user_id % 2}'.
// The expression is evaluated as a javascript template literal, the variables are
// resolved from the context object passed on each call.
type inlineTemplate struct {
	// runtime is not thread-safe, wrap as leaky buffer.
	// please see https://go.dev/doc/effective_go#leaky_buffer
	freelist chan *goja.Runtime
	script   string
	expr     string
}

func newInlineTemplate(expr string) (*inlineTemplate, error) {
	expr = strings.TrimSpace(expr)
	if len(expr) == 0 {
		return nil, errors.Errorf("property '%s' is required", PropAlgorithmExpression)
	}
	if strings.IndexByte(expr, '`') != -1 {
		return nil, errors.Errorf("invalid inline expression '%s'", expr)
	}

	script := wrapTemplate(strings.ReplaceAll(expr, "$->{", "${"))
	vm, err := createVM(script)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid inline expression '%s'", expr)
	}

	ret := &inlineTemplate{
		freelist: make(chan *goja.Runtime, runtime.NumCPU()*2),
		script:   script,
		expr:     expr,
	}
	ret.freelist <- vm

	return ret, nil
}

// Render evaluates the expression with the given variables.
func (t *inlineTemplate) Render(vars map[string]interface{}) (string, error) {
	vm, err := t.getVM()
	if err != nil {
		return "", err
	}

	defer func() {
		t.putVM(vm)
	}()

	fn, _ := goja.AssertFunction(vm.Get(_jsEntrypoint))
	res, err := fn(goja.Undefined(), vm.ToValue(vars))
	if err != nil {
		return "", errors.Wrapf(err, "cannot evaluate inline expression '%s'", t.expr)
	}

	return res.String(), nil
}

// Close drops all pooled runtimes.
func (t *inlineTemplate) Close() error {
	for {
		select {
		case <-t.freelist:
		default:
			return nil
		}
	}
}

func (t *inlineTemplate) getVM() (*goja.Runtime, error) {
	select {
	case next := <-t.freelist:
		return next, nil
	default:
		return createVM(t.script)
	}
}

func (t *inlineTemplate) putVM(vm *goja.Runtime) {
	select {
	case t.freelist <- vm:
	default:
	}
}

func wrapTemplate(expr string) string {
	var sb strings.Builder

	sb.Grow(48 + len(_jsEntrypoint) + 2*len(_jsContext) + len(expr))

	sb.WriteString("function ")
	sb.WriteString(_jsEntrypoint)
	sb.WriteString("(")
	sb.WriteString(_jsContext)
	sb.WriteString(") {\nwith (")
	sb.WriteString(_jsContext)
	sb.WriteString(") {\nreturn `")
	sb.WriteString(expr)
	sb.WriteString("`;\n}\n}")

	return sb.String()
}

func createVM(script string) (*goja.Runtime, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, errors.WithStack(err)
	}
	return vm, nil
}

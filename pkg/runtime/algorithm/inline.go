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
	"sort"
	"strings"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

const (
	PropShardingColumns = "sharding-columns"

	_hintVariable = "value"
)

var (
	_ rule.StandardAlgorithm = (*inlineAlgorithm)(nil)
	_ rule.StandardAlgorithm = (*rangeInlineAlgorithm)(nil)
	_ rule.RangeAlgorithm    = (*rangeInlineAlgorithm)(nil)
	_ rule.ComplexAlgorithm  = (*complexInlineAlgorithm)(nil)
	_ rule.HintAlgorithm     = (*hintInlineAlgorithm)(nil)
)

// inlineAlgorithm renders the target name from the value of the sharding column.
type inlineAlgorithm struct {
	*inlineTemplate
}

// rangeInlineAlgorithm is an inline algorithm which routes range queries to all targets.
type rangeInlineAlgorithm struct {
	inlineAlgorithm
}

// NewInline creates an INLINE algorithm.
// It supports range sharding only if 'allow-range-query-with-inline-sharding' is true.
func NewInline(props Props) (rule.Algorithm, error) {
	tpl, err := newInlineTemplate(props[PropAlgorithmExpression])
	if err != nil {
		return nil, err
	}
	ret := inlineAlgorithm{inlineTemplate: tpl}
	if props.Bool(PropAllowRangeQuery) {
		return &rangeInlineAlgorithm{inlineAlgorithm: ret}, nil
	}
	return &ret, nil
}

func (a *inlineAlgorithm) Type() string {
	return TypeInline
}

func (a *inlineAlgorithm) DoSharding(_ []string, value rule.PreciseValue) (string, error) {
	if value.Value == nil {
		return "", errors.Errorf("%s: cannot shard %s.%s by NULL", TypeInline, value.Table, value.Column)
	}
	return a.Render(map[string]interface{}{
		value.Column:                  value.Value,
		strings.ToLower(value.Column): value.Value,
	})
}

func (a *rangeInlineAlgorithm) DoRangeSharding(targets []string, _ rule.RangeShardingValue) ([]string, error) {
	return targets, nil
}

// complexInlineAlgorithm renders target names from the values of several columns.
type complexInlineAlgorithm struct {
	*inlineTemplate
	columns    []string
	allowRange bool
}

// NewComplexInline creates a COMPLEX_INLINE algorithm.
func NewComplexInline(props Props) (rule.Algorithm, error) {
	tpl, err := newInlineTemplate(props[PropAlgorithmExpression])
	if err != nil {
		return nil, err
	}
	var columns []string
	for _, it := range strings.Split(props[PropShardingColumns], ",") {
		if it = strings.ToLower(strings.TrimSpace(it)); len(it) > 0 {
			columns = append(columns, it)
		}
	}
	return &complexInlineAlgorithm{
		inlineTemplate: tpl,
		columns:        columns,
		allowRange:     props.Bool(PropAllowRangeQuery),
	}, nil
}

func (a *complexInlineAlgorithm) Type() string {
	return TypeComplexInline
}

// DoSharding renders the expression for every combination of column values.
// If any column is missing a precise value, every target may contain the rows.
func (a *complexInlineAlgorithm) DoSharding(targets []string, values rule.ComplexValues) ([]string, error) {
	if len(values.Ranges) > 0 {
		if !a.allowRange {
			return nil, errors.Errorf("%s: range query is not allowed on table %s", TypeComplexInline, values.Table)
		}
		return targets, nil
	}

	columns := a.columns
	if len(columns) == 0 {
		for k := range values.Lists {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	for _, it := range columns {
		if len(values.Lists[it]) == 0 {
			return targets, nil
		}
	}

	var (
		ret  []string
		vars = make(map[string]interface{}, len(columns))
	)

	var walk func(i int) error
	walk = func(i int) error {
		if i == len(columns) {
			target, err := a.Render(vars)
			if err != nil {
				return err
			}
			ret = appendUnique(ret, target)
			return nil
		}
		for _, v := range values.Lists[columns[i]] {
			vars[columns[i]] = v
			if err := walk(i + 1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0); err != nil {
		return nil, err
	}
	return ret, nil
}

// hintInlineAlgorithm renders target names from hint values, the variable is named 'value'.
type hintInlineAlgorithm struct {
	*inlineTemplate
}

// NewHintInline creates a HINT_INLINE algorithm, the expression defaults to '${value}'.
func NewHintInline(props Props) (rule.Algorithm, error) {
	expr := props[PropAlgorithmExpression]
	if len(strings.TrimSpace(expr)) == 0 {
		expr = "${" + _hintVariable + "}"
	}
	tpl, err := newInlineTemplate(expr)
	if err != nil {
		return nil, err
	}
	return &hintInlineAlgorithm{inlineTemplate: tpl}, nil
}

func (a *hintInlineAlgorithm) Type() string {
	return TypeHintInline
}

func (a *hintInlineAlgorithm) DoSharding(_ []string, value rule.HintShardingValue) ([]string, error) {
	var ret []string
	for _, it := range value.Values {
		target, err := a.Render(map[string]interface{}{_hintVariable: it})
		if err != nil {
			return nil, err
		}
		ret = appendUnique(ret, target)
	}
	return ret, nil
}

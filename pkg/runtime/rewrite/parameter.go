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

package rewrite

import (
	"sort"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/route"
)

var (
	_ ParameterBuilder = (*StandardParameterBuilder)(nil)
	_ ParameterBuilder = (*GroupedParameterBuilder)(nil)
)

// ParameterBuilder builds the parameters of each route unit.
// Implementations: *StandardParameterBuilder, *GroupedParameterBuilder.
type ParameterBuilder interface {
	// Parameters returns the parameters of the unit, values are never invented.
	Parameters(unit *route.RouteUnit) []interface{}
	isParameterBuilder()
}

// NewParameterBuilder chooses the builder of the statement: grouped for INSERT with VALUES,
// standard for the others.
func NewParameterBuilder(stmt ast.Statement, rc *route.RouteContext, params []interface{}) ParameterBuilder {
	if s, ok := stmt.(*ast.InsertStatement); ok && len(s.Values) > 0 {
		return NewGroupedParameterBuilder(s, rc.OriginalDataNodes, params)
	}
	return &StandardParameterBuilder{params: copyParams(params)}
}

// StandardParameterBuilder gives every unit the same parameters.
type StandardParameterBuilder struct {
	params []interface{}
}

// Parameters returns a copy of the parameters, units never share the backing array.
func (b *StandardParameterBuilder) Parameters(_ *route.RouteUnit) []interface{} {
	return copyParams(b.params)
}

func (b *StandardParameterBuilder) isParameterBuilder() {}

// GroupedParameterBuilder splits the parameters by INSERT value groups.
// The parameters outside value groups, eg: of ON DUPLICATE KEY UPDATE, are shared by all units.
type GroupedParameterBuilder struct {
	groups  [][]interface{}
	generic []interface{}
	nodes   [][]rule.DataNode
}

func NewGroupedParameterBuilder(s *ast.InsertStatement, nodes [][]rule.DataNode, params []interface{}) *GroupedParameterBuilder {
	var (
		b    = &GroupedParameterBuilder{groups: make([][]interface{}, 0, len(s.Values)), nodes: nodes}
		used = make(map[int]struct{})
	)

	for _, group := range s.Values {
		var indexes []int
		for _, e := range group.Values {
			indexes = append(indexes, ast.Params(e)...)
		}
		sort.Ints(indexes)

		values := make([]interface{}, 0, len(indexes))
		for _, i := range indexes {
			if i < 0 || i >= len(params) {
				continue
			}
			used[i] = struct{}{}
			values = append(values, params[i])
		}
		b.groups = append(b.groups, values)
	}

	for i, it := range params {
		if _, ok := used[i]; !ok {
			b.generic = append(b.generic, it)
		}
	}

	return b
}

// Groups returns the parameters of each value group.
func (b *GroupedParameterBuilder) Groups() [][]interface{} {
	return b.groups
}

// Generic returns the parameters outside value groups.
func (b *GroupedParameterBuilder) Generic() []interface{} {
	return b.generic
}

// Parameters returns the parameters of the groups routed to the unit in original order,
// followed by the generic ones.
func (b *GroupedParameterBuilder) Parameters(unit *route.RouteUnit) []interface{} {
	var ret []interface{}
	for i, it := range b.groups {
		if covers(unit, b.nodes, i) {
			ret = append(ret, it...)
		}
	}
	return append(ret, b.generic...)
}

func (b *GroupedParameterBuilder) isParameterBuilder() {}

// copyParams detaches parameters from the buffer of the caller, which may be reused after planning.
func copyParams(params []interface{}) []interface{} {
	if params == nil {
		return nil
	}
	ret := make([]interface{}, len(params))
	copy(ret, params)
	return ret
}

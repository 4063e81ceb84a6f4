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

package condition

import (
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
)

// AssignmentValue resolves the value of an assignment.
// A literal yields itself, a parameter marker yields the parameter, an index out of
// range or any other expression is not extractable.
func AssignmentValue(e ast.Expr, params []interface{}) (interface{}, bool) {
	switch it := e.(type) {
	case *ast.LiteralExpr:
		return it.Value, true
	case *ast.ParamExpr:
		if it.Index < 0 || it.Index >= len(params) {
			return nil, false
		}
		return params[it.Index], true
	default:
		return nil, false
	}
}

// ExtractAssignments builds a condition from the assignments of sharding columns of the table.
// It returns nil if no sharding column is assigned with an extractable value.
func ExtractAssignments(table string, assignments []*ast.Assignment, params []interface{}, ru *rule.ShardingRule) *ShardingConditions {
	table = strings.ToLower(table)

	sc := &ShardingCondition{}
	for _, it := range assignments {
		if len(it.Column.Table) > 0 && !strings.EqualFold(it.Column.Table, table) {
			continue
		}
		if !ru.IsShardingColumn(it.Column.Name, table) {
			continue
		}
		v, ok := AssignmentValue(it.Value, params)
		if !ok || v == nil {
			continue
		}
		var indexes []int
		if p, isParam := it.Value.(*ast.ParamExpr); isParam {
			indexes = []int{p.Index}
		}
		sc.Values = append(sc.Values, &ListValue{
			Table:  table,
			Column: strings.ToLower(it.Column.Name),
			Values: []interface{}{v},
			Params: indexes,
		})
	}

	if len(sc.Values) == 0 {
		return nil
	}
	return &ShardingConditions{Conditions: []*ShardingCondition{sc}}
}

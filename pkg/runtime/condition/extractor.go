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
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
)

// _maxGroups limits the expansion of OR predicates, a larger predicate is treated as unconditioned.
const _maxGroups = 256

// Extract extracts the sharding conditions of the statement.
// Expressions which cannot be resolved are skipped, they never cause an error.
func Extract(stmt ast.Statement, params []interface{}, ru *rule.ShardingRule) (*ShardingConditions, error) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return fromWhere(selectPredicate(s), params, ru), nil
	case *ast.UpdateStatement:
		return fromWhere(s.Where, params, ru), nil
	case *ast.DeleteStatement:
		return fromWhere(s.Where, params, ru), nil
	case *ast.InsertStatement:
		if s.Select != nil {
			return fromWhere(selectPredicate(s.Select), params, ru), nil
		}
		return fromInsertValues(s, params, ru), nil
	case *ast.CreateTableStatement, *ast.AlterTableStatement, *ast.DropTableStatement,
		*ast.TruncateStatement, *ast.CreateIndexStatement, *ast.DropIndexStatement:
		return &ShardingConditions{}, nil
	default:
		return nil, errors.Wrapf(ast.ErrUnknownStatement, "cannot extract sharding conditions from %T", stmt)
	}
}

// selectPredicate joins the ON conditions and WHERE of a SELECT.
func selectPredicate(s *ast.SelectStatement) ast.Expr {
	ret := s.Where
	for _, it := range s.On {
		if ret == nil {
			ret = it
			continue
		}
		ret = &ast.BinaryExpr{Op: ast.OpAnd, Left: ret, Right: it}
	}
	return ret
}

type columnKey struct {
	table, column string
}

func keyOf(c *ast.ColumnSegment) columnKey {
	return columnKey{table: strings.ToLower(c.Table), column: strings.ToLower(c.Name)}
}

func fromWhere(where ast.Expr, params []interface{}, ru *rule.ShardingRule) *ShardingConditions {
	ret := &ShardingConditions{}
	if where == nil {
		return ret
	}

	groups, ok := toDNF(where)
	if !ok {
		return ret
	}

	for _, group := range groups {
		if sc := fromAndGroup(group, params, ru); sc != nil {
			ret.Conditions = append(ret.Conditions, sc)
			continue
		}
		// one OR branch without any sharding value makes the whole predicate unconditioned
		return &ShardingConditions{}
	}

	return ret
}

// fromAndGroup returns nil if the group contains no sharding value.
func fromAndGroup(group []ast.Expr, params []interface{}, ru *rule.ShardingRule) *ShardingCondition {
	var (
		keys   []columnKey
		values = make(map[columnKey]ConditionValue)
		joins  [][2]columnKey
		empty  bool
	)

	put := func(k columnKey, v ConditionValue) {
		exist, ok := values[k]
		if !ok {
			keys = append(keys, k)
			values[k] = v
			return
		}
		merged, ok := merge(exist, v)
		if !ok {
			empty = true
			return
		}
		values[k] = merged
	}

	for _, atom := range group {
		if left, right, ok := joinColumns(atom); ok {
			joins = append(joins, [2]columnKey{keyOf(left), keyOf(right)})
			continue
		}
		col, v, ok := extractAtom(atom, params)
		if !ok || !ru.IsShardingColumn(col.Name, col.Table) {
			continue
		}
		put(keyOf(col), v)
	}

	// propagate values through equal join columns
	for changed := true; changed && !empty; {
		changed = false
		for _, pair := range joins {
			for _, dir := range [][2]columnKey{{pair[0], pair[1]}, {pair[1], pair[0]}} {
				from, to := dir[0], dir[1]
				v, ok := values[from]
				if !ok {
					continue
				}
				if _, ok = values[to]; ok {
					continue
				}
				if !ru.IsShardingColumn(to.column, to.table) {
					continue
				}
				put(to, retarget(v, to))
				changed = true
			}
		}
	}

	if empty {
		return &ShardingCondition{AlwaysFalse: true}
	}
	if len(keys) == 0 {
		return nil
	}

	sc := &ShardingCondition{Values: make([]ConditionValue, 0, len(keys))}
	for _, k := range keys {
		sc.Values = append(sc.Values, values[k])
	}
	return sc
}

func retarget(v ConditionValue, k columnKey) ConditionValue {
	switch it := v.(type) {
	case *ListValue:
		return &ListValue{Table: k.table, Column: k.column, Values: it.Values, Params: it.Params}
	case *RangeValue:
		return &RangeValue{Table: k.table, Column: k.column, Range: it.Range, Params: it.Params}
	default:
		return v
	}
}

func joinColumns(e ast.Expr) (left, right *ast.ColumnSegment, ok bool) {
	b, isBinary := e.(*ast.BinaryExpr)
	if !isBinary || b.Op != ast.OpEq {
		return
	}
	l, lok := b.Left.(*ast.ColumnExpr)
	r, rok := b.Right.(*ast.ColumnExpr)
	if !lok || !rok || strings.EqualFold(l.Column.Table, r.Column.Table) {
		return
	}
	return l.Column, r.Column, true
}

// extractAtom extracts the value of a predicate like 'col = ?', 'col IN (1,2)' or 'col BETWEEN 1 AND ?'.
func extractAtom(e ast.Expr, params []interface{}) (*ast.ColumnSegment, ConditionValue, bool) {
	switch it := e.(type) {
	case *ast.BinaryExpr:
		if !it.Op.IsComparison() || it.Op == ast.OpNe {
			return nil, nil, false
		}
		op, col, other := it.Op, asColumn(it.Left), it.Right
		if col == nil {
			op, col, other = it.Op.Reverse(), asColumn(it.Right), it.Left
		}
		if col == nil {
			return nil, nil, false
		}
		v, idx, ok := resolve(other, params)
		if !ok {
			return nil, nil, false
		}
		var (
			k       = keyOf(col)
			indexes = paramsOf(idx)
		)
		switch op {
		case ast.OpEq:
			return col, &ListValue{Table: k.table, Column: k.column, Values: []interface{}{v}, Params: indexes}, true
		case ast.OpLt, ast.OpLte:
			return col, &RangeValue{Table: k.table, Column: k.column, Range: rule.AtMost(v, op == ast.OpLte), Params: indexes}, true
		case ast.OpGt, ast.OpGte:
			return col, &RangeValue{Table: k.table, Column: k.column, Range: rule.AtLeast(v, op == ast.OpGte), Params: indexes}, true
		}
	case *ast.InExpr:
		col := asColumn(it.Left)
		if it.Not || col == nil || len(it.Values) == 0 {
			return nil, nil, false
		}
		k := keyOf(col)
		lv := &ListValue{Table: k.table, Column: k.column}
		for _, next := range it.Values {
			v, idx, ok := resolve(next, params)
			if !ok {
				return nil, nil, false
			}
			lv.Values = append(lv.Values, v)
			lv.Params = append(lv.Params, paramsOf(idx)...)
		}
		return col, lv, true
	case *ast.BetweenExpr:
		col := asColumn(it.Left)
		if it.Not || col == nil {
			return nil, nil, false
		}
		lower, lowerIdx, ok := resolve(it.Lower, params)
		if !ok {
			return nil, nil, false
		}
		upper, upperIdx, ok := resolve(it.Upper, params)
		if !ok {
			return nil, nil, false
		}
		k := keyOf(col)
		return col, &RangeValue{
			Table:  k.table,
			Column: k.column,
			Range:  rule.Closed(lower, upper),
			Params: append(paramsOf(lowerIdx), paramsOf(upperIdx)...),
		}, true
	}
	return nil, nil, false
}

func asColumn(e ast.Expr) *ast.ColumnSegment {
	if c, ok := e.(*ast.ColumnExpr); ok && len(c.Column.Table) > 0 {
		return c.Column
	}
	return nil
}

func paramsOf(idx int) []int {
	if idx < 0 {
		return nil
	}
	return []int{idx}
}

// resolve resolves a literal or a parameter marker, idx is -1 for literals.
// NULL is never a sharding value.
func resolve(e ast.Expr, params []interface{}) (v interface{}, idx int, ok bool) {
	switch it := e.(type) {
	case *ast.LiteralExpr:
		if it.Value == nil {
			return nil, -1, false
		}
		return it.Value, -1, true
	case *ast.ParamExpr:
		if it.Index < 0 || it.Index >= len(params) || params[it.Index] == nil {
			return nil, -1, false
		}
		return params[it.Index], it.Index, true
	default:
		return nil, -1, false
	}
}

// toDNF flattens the predicate into OR-ed groups of AND-ed atoms.
func toDNF(e ast.Expr) ([][]ast.Expr, bool) {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || (b.Op != ast.OpAnd && b.Op != ast.OpOr) {
		return [][]ast.Expr{{e}}, true
	}

	left, ok := toDNF(b.Left)
	if !ok {
		return nil, false
	}
	right, ok := toDNF(b.Right)
	if !ok {
		return nil, false
	}

	if b.Op == ast.OpOr {
		if len(left)+len(right) > _maxGroups {
			return nil, false
		}
		return append(left, right...), true
	}

	if len(left)*len(right) > _maxGroups {
		return nil, false
	}
	ret := make([][]ast.Expr, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			group := make([]ast.Expr, 0, len(l)+len(r))
			group = append(group, l...)
			group = append(group, r...)
			ret = append(ret, group)
		}
	}
	return ret, true
}

func fromInsertValues(s *ast.InsertStatement, params []interface{}, ru *rule.ShardingRule) *ShardingConditions {
	var (
		ret     = &ShardingConditions{}
		table   = strings.ToLower(s.Table.Name)
		columns = ru.ShardingColumns(table)
	)
	for i, group := range s.Values {
		sc := &ShardingCondition{StartIndex: i}
		for _, column := range columns {
			idx := s.ColumnIndex(column)
			if idx < 0 || idx >= len(group.Values) {
				continue
			}
			v, paramIdx, ok := resolve(group.Values[idx], params)
			if !ok {
				continue
			}
			sc.Values = append(sc.Values, &ListValue{
				Table:  table,
				Column: column,
				Values: []interface{}{v},
				Params: paramsOf(paramIdx),
			})
		}
		ret.Conditions = append(ret.Conditions, sc)
	}
	return ret
}

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

package route

import (
	"reflect"
	"sort"
	"strings"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/condition"
)

// ValidateMultiTable checks the tables of a DML or DDL statement can be routed together:
// all of them are sharding tables of one binding group, or all broadcast, or all single.
func ValidateMultiTable(ru *rule.ShardingRule, stmt ast.Statement, tables []string) error {
	mode := stmt.Mode()
	if !mode.IsDML() && !mode.IsDDL() {
		return nil
	}
	if len(tables) < 2 {
		return nil
	}

	var sharding, broadcast int
	for _, it := range tables {
		switch {
		case ru.IsShardingTable(it):
			sharding++
		case ru.IsBroadcastTable(it):
			broadcast++
		}
	}

	switch len(tables) {
	case sharding:
		if ru.IsAllBindingTables(tables) {
			return nil
		}
	case broadcast:
		return nil
	default:
		if sharding == 0 && broadcast == 0 {
			return nil
		}
	}

	return errors.Wrapf(ErrUnsupportedMultiTable, "%s cannot route tables %v together", mode, tables)
}

// IsSameRouteContext returns true if both route plans have the same units in the same order.
func IsSameRouteContext(a, b *RouteContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Units) != len(b.Units) {
		return false
	}
	for i := range a.Units {
		x, y := a.Units[i], b.Units[i]
		if x.DataSource != y.DataSource || len(x.Tables) != len(y.Tables) {
			return false
		}
		for j := range x.Tables {
			if x.Tables[j] != y.Tables[j] {
				return false
			}
		}
	}
	return true
}

func (rt *routing) validate(scs *condition.ShardingConditions, rc *RouteContext) error {
	switch s := rt.stmt.(type) {
	case *ast.UpdateStatement:
		return rt.validateUpdate(s, scs, rc)
	case *ast.InsertStatement:
		if s.Select == nil {
			return rt.validateOnDuplicate(s, scs)
		}
	}
	return nil
}

// validateUpdate rejects an UPDATE whose SET clause moves rows to other shards.
func (rt *routing) validateUpdate(s *ast.UpdateStatement, scs *condition.ShardingConditions, rc *RouteContext) error {
	if scs.IsAlwaysFalse() {
		return nil
	}
	for _, table := range rt.shardings {
		assigned := condition.ExtractAssignments(table, s.Set, rt.params, rt.rule)
		if assigned == nil {
			continue
		}
		tr, _ := rt.rule.TableRule(table)
		shards, err := rt.routeTable(tr, overrideConditions(scs, assigned))
		if err != nil {
			return err
		}

		moved := &RouteContext{}
		shards.Each(func(db, tb uint32) bool {
			node, _ := tr.Node(db, tb)
			moved.Units = append(moved.Units, &RouteUnit{
				DataSource: RouteMapper{Logical: node.DataSource, Actual: node.DataSource},
				Tables:     []RouteMapper{{Logical: table, Actual: node.Table}},
			})
			return true
		})

		if !IsSameRouteContext(projectTable(rc, table), projectTable(moved, table)) {
			return errors.Wrapf(ErrShardingKeyUpdated, "cannot update sharding key of table '%s': %s => %s", table, assigned, moved)
		}
	}
	return nil
}

// overrideConditions replaces the values of WHERE conditions by the assigned ones.
func overrideConditions(where, assigned *condition.ShardingConditions) *condition.ShardingConditions {
	if where.IsEmpty() {
		return assigned
	}
	values := assigned.Conditions[0].Values
	ret := &condition.ShardingConditions{Conditions: make([]*condition.ShardingCondition, 0, len(where.Conditions))}
	for _, sc := range where.Conditions {
		if sc.AlwaysFalse {
			continue
		}
		next := &condition.ShardingCondition{Values: append([]condition.ConditionValue(nil), values...)}
		for _, it := range sc.Values {
			if _, ok := assigned.Conditions[0].Find(it.TableName(), it.ColumnName()); !ok {
				next.Values = append(next.Values, it)
			}
		}
		ret.Conditions = append(ret.Conditions, next)
	}
	return ret
}

// projectTable returns the distinct destinations of the table, sorted by data source and actual table.
func projectTable(rc *RouteContext, table string) *RouteContext {
	var (
		ret    = &RouteContext{}
		visits = make(map[rule.DataNode]struct{})
	)
	for _, it := range rc.Units {
		m, ok := it.FindTable(table)
		if !ok {
			continue
		}
		node := rule.DataNode{DataSource: it.DataSource.Actual, Table: m.Actual}
		if _, ok = visits[node]; ok {
			continue
		}
		visits[node] = struct{}{}
		ret.Units = append(ret.Units, &RouteUnit{
			DataSource: RouteMapper{Logical: node.DataSource, Actual: node.DataSource},
			Tables:     []RouteMapper{m},
		})
	}
	sort.SliceStable(ret.Units, func(i, j int) bool {
		a, b := ret.Units[i], ret.Units[j]
		if a.DataSource.Actual != b.DataSource.Actual {
			return a.DataSource.Actual < b.DataSource.Actual
		}
		return a.Tables[0].Actual < b.Tables[0].Actual
	})
	return ret
}

// validateOnDuplicate rejects ON DUPLICATE KEY UPDATE assignments which change a sharding column.
func (rt *routing) validateOnDuplicate(s *ast.InsertStatement, scs *condition.ShardingConditions) error {
	table := strings.ToLower(s.Table.Name)
	for _, it := range s.OnDuplicate {
		column := strings.ToLower(it.Column.Name)
		if !rt.rule.IsShardingColumn(column, table) || isValuesOf(it.Value, column) {
			continue
		}
		v, ok := condition.AssignmentValue(it.Value, rt.params)
		if !ok {
			return errors.Wrapf(ErrShardingKeyUpdated, "sharding column %s.%s is updated by %s", table, column, it.Value)
		}
		for i, sc := range scs.Conditions {
			cv, found := sc.Find(table, column)
			if !found || !isSingleValue(cv, v) {
				return errors.Wrapf(ErrShardingKeyUpdated, "sharding column %s.%s of value group #%d is updated to %v", table, column, i, v)
			}
		}
	}
	return nil
}

// isValuesOf returns true for VALUES(column), which keeps the inserted value.
func isValuesOf(e ast.Expr, column string) bool {
	f, ok := e.(*ast.FuncExpr)
	if !ok || !strings.EqualFold(f.Name, "VALUES") || len(f.Args) != 1 {
		return false
	}
	c, ok := f.Args[0].(*ast.ColumnExpr)
	return ok && strings.EqualFold(c.Column.Name, column)
}

func isSingleValue(cv condition.ConditionValue, v interface{}) bool {
	l, ok := cv.(*condition.ListValue)
	if !ok || len(l.Values) != 1 {
		return false
	}
	if c, err := rule.Compare(l.Values[0], v); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(l.Values[0], v)
}

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
	"reflect"
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

// merge intersects two values of the same column, ok is false if nothing is left.
func merge(a, b ConditionValue) (ConditionValue, bool) {
	switch x := a.(type) {
	case *ListValue:
		switch y := b.(type) {
		case *ListValue:
			return intersectList(x, func(v interface{}) bool { return containsValue(y.Values, v) }, y.Params)
		case *RangeValue:
			return intersectList(x, y.Range.Contains, y.Params)
		}
	case *RangeValue:
		switch y := b.(type) {
		case *ListValue:
			return intersectList(y, x.Range.Contains, x.Params)
		case *RangeValue:
			r, ok := x.Range.Intersect(y.Range)
			if !ok {
				return nil, false
			}
			return &RangeValue{
				Table:  x.Table,
				Column: x.Column,
				Range:  r,
				Params: unionInts(x.Params, y.Params),
			}, true
		}
	}
	return a, true
}

func intersectList(l *ListValue, keep func(interface{}) bool, params []int) (ConditionValue, bool) {
	ret := &ListValue{
		Table:  l.Table,
		Column: l.Column,
		Params: unionInts(l.Params, params),
	}
	for _, it := range l.Values {
		if keep(it) && !containsValue(ret.Values, it) {
			ret.Values = append(ret.Values, it)
		}
	}
	if len(ret.Values) == 0 {
		return nil, false
	}
	return ret, true
}

func containsValue(values []interface{}, v interface{}) bool {
	for _, it := range values {
		if c, err := rule.Compare(it, v); err == nil {
			if c == 0 {
				return true
			}
			continue
		}
		if reflect.DeepEqual(it, v) {
			return true
		}
	}
	return false
}

func unionInts(a, b []int) []int {
	ret := append([]int(nil), a...)
	for _, it := range b {
		exists := false
		for _, x := range ret {
			if x == it {
				exists = true
				break
			}
		}
		if !exists {
			ret = append(ret, it)
		}
	}
	return ret
}

// Retarget moves the values of the bound tables onto the table, as the tables of one binding
// group share the sharding values. Only the sharding columns of the table are moved, and the
// values of the same column are intersected.
func Retarget(scs *ShardingConditions, table string, bound []string, ru *rule.ShardingRule) *ShardingConditions {
	if scs.IsEmpty() {
		return scs
	}
	table = strings.ToLower(table)

	ret := &ShardingConditions{Conditions: make([]*ShardingCondition, 0, len(scs.Conditions))}
	for _, sc := range scs.Conditions {
		if sc.AlwaysFalse {
			ret.Conditions = append(ret.Conditions, sc)
			continue
		}

		next := &ShardingCondition{StartIndex: sc.StartIndex}
		var moved []ConditionValue
		for _, it := range sc.Values {
			if it.TableName() == table || !isBound(it.TableName(), bound) || !ru.IsShardingColumn(it.ColumnName(), table) {
				next.Values = append(next.Values, it)
				continue
			}
			moved = append(moved, withTable(it, table))
		}

		for _, it := range moved {
			i := indexOf(next.Values, table, it.ColumnName())
			if i == -1 {
				next.Values = append(next.Values, it)
				continue
			}
			merged, ok := merge(next.Values[i], it)
			if !ok {
				next.AlwaysFalse = true
				break
			}
			next.Values[i] = merged
		}
		ret.Conditions = append(ret.Conditions, next)
	}
	return ret
}

func isBound(table string, bound []string) bool {
	for _, it := range bound {
		if strings.EqualFold(it, table) {
			return true
		}
	}
	return false
}

func indexOf(values []ConditionValue, table, column string) int {
	for i, it := range values {
		if it.TableName() == table && it.ColumnName() == column {
			return i
		}
	}
	return -1
}

func withTable(v ConditionValue, table string) ConditionValue {
	switch it := v.(type) {
	case *ListValue:
		return &ListValue{Table: table, Column: it.Column, Values: it.Values, Params: it.Params}
	case *RangeValue:
		return &RangeValue{Table: table, Column: it.Column, Range: it.Range, Params: it.Params}
	}
	return v
}

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
	"fmt"
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

var (
	_ ConditionValue = (*ListValue)(nil)
	_ ConditionValue = (*RangeValue)(nil)
)

// ConditionValue is the value of one sharding column of one logical table.
// Implementations: *ListValue, *RangeValue.
type ConditionValue interface {
	fmt.Stringer
	// TableName returns the lower-case logical table.
	TableName() string
	// ColumnName returns the lower-case sharding column.
	ColumnName() string
	// ParameterIndexes returns the indexes of parameters which produced the value.
	ParameterIndexes() []int
	isConditionValue()
}

// ListValue is produced by '=' and 'IN'.
type ListValue struct {
	Table  string
	Column string
	Values []interface{}
	Params []int
}

func (l *ListValue) TableName() string       { return l.Table }
func (l *ListValue) ColumnName() string      { return l.Column }
func (l *ListValue) ParameterIndexes() []int { return l.Params }
func (l *ListValue) isConditionValue()       {}

func (l *ListValue) String() string {
	return fmt.Sprintf("%s.%s IN %v", l.Table, l.Column, l.Values)
}

// RangeValue is produced by '<', '<=', '>', '>=' and 'BETWEEN'.
type RangeValue struct {
	Table  string
	Column string
	Range  rule.ValueRange
	Params []int
}

func (r *RangeValue) TableName() string       { return r.Table }
func (r *RangeValue) ColumnName() string      { return r.Column }
func (r *RangeValue) ParameterIndexes() []int { return r.Params }
func (r *RangeValue) isConditionValue()       {}

func (r *RangeValue) String() string {
	return fmt.Sprintf("%s.%s IN %s", r.Table, r.Column, r.Range)
}

// ShardingCondition is the sharding values of one AND group, or one INSERT value group.
type ShardingCondition struct {
	Values []ConditionValue
	// StartIndex is the index of the INSERT value group, zero for other statements.
	StartIndex int
	// AlwaysFalse is true if the values of one column contradict each other.
	AlwaysFalse bool
}

// Find returns the value of the table column.
func (sc *ShardingCondition) Find(table, column string) (ConditionValue, bool) {
	for _, it := range sc.Values {
		if strings.EqualFold(it.TableName(), table) && strings.EqualFold(it.ColumnName(), column) {
			return it, true
		}
	}
	return nil, false
}

// HasTable returns true if any value belongs to the table.
func (sc *ShardingCondition) HasTable(table string) bool {
	for _, it := range sc.Values {
		if strings.EqualFold(it.TableName(), table) {
			return true
		}
	}
	return false
}

func (sc *ShardingCondition) String() string {
	if sc.AlwaysFalse {
		return "FALSE"
	}
	var sb strings.Builder
	for i, it := range sc.Values {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(it.String())
	}
	return sb.String()
}

// ShardingConditions is the result of extraction, the conditions are OR-ed.
type ShardingConditions struct {
	Conditions []*ShardingCondition
}

// IsEmpty returns true if nothing was extracted.
func (scs *ShardingConditions) IsEmpty() bool {
	return scs == nil || len(scs.Conditions) == 0
}

// IsAlwaysFalse returns true if every condition is always false.
func (scs *ShardingConditions) IsAlwaysFalse() bool {
	if scs.IsEmpty() {
		return false
	}
	for _, it := range scs.Conditions {
		if !it.AlwaysFalse {
			return false
		}
	}
	return true
}

func (scs *ShardingConditions) String() string {
	if scs.IsEmpty() {
		return "<none>"
	}
	var sb strings.Builder
	for i, it := range scs.Conditions {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteByte('(')
		sb.WriteString(it.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

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

package ast

import (
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
)

type unknownStatement struct{}

func (unknownStatement) Mode() SQLType           { return 0 }
func (unknownStatement) Text() string            { return "" }
func (unknownStatement) Tables() []*TableSegment { return nil }
func (unknownStatement) isStatement()            {}

func column(table, name string) *ColumnExpr {
	return &ColumnExpr{Column: &ColumnSegment{Name: name, Table: table}}
}

func TestSQLType(t *testing.T) {
	assert.Equal(t, "INSERT SELECT", SQLTypeInsertSelect.String())
	assert.Equal(t, "UNKNOWN", SQLType(200).String())
	assert.True(t, SQLTypeUpdate.IsDML())
	assert.False(t, SQLTypeSelect.IsDML())
	assert.True(t, SQLTypeDropIndex.IsDDL())
	assert.False(t, SQLTypeInsert.IsDDL())
}

func TestBinaryOp(t *testing.T) {
	assert.True(t, OpLte.IsComparison())
	assert.False(t, OpAnd.IsComparison())
	assert.Equal(t, OpGt, OpLt.Reverse())
	assert.Equal(t, OpEq, OpEq.Reverse())
}

func TestTablesAndWalk(t *testing.T) {
	sub := &SelectStatement{
		SQL:  "SELECT user_id FROM t_user WHERE status = ?",
		From: []*TableSegment{{Name: "t_user"}},
		Where: &BinaryExpr{
			Op:    OpEq,
			Left:  column("t_user", "status"),
			Right: &ParamExpr{Index: 1},
		},
	}
	stmt := &SelectStatement{
		From: []*TableSegment{{Name: "T_ORDER"}, {Name: "t_order", Alias: "o2"}},
		Where: &BinaryExpr{
			Op: OpAnd,
			Left: &InExpr{
				Left:   column("t_order", "user_id"),
				Values: []Expr{&SubqueryExpr{Select: sub}},
			},
			Right: &BetweenExpr{
				Left:  column("t_order", "order_id"),
				Lower: &ParamExpr{Index: 0},
				Upper: &LiteralExpr{Value: 10},
			},
		},
	}

	assert.Len(t, stmt.Tables(), 3)
	assert.Equal(t, []string{"t_order", "t_user"}, TableNames(stmt))
	assert.Equal(t, []int{1, 0}, Params(stmt.Where))

	var columns []string
	err := WalkStatement(stmt, func(e Expr) bool {
		if c, ok := e.(*ColumnExpr); ok {
			columns = append(columns, c.Column.Name)
		}
		return true
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"user_id", "status", "order_id"}, columns)

	assert.Equal(t, "(user_id IN ((SELECT user_id FROM t_user WHERE status = ?)) AND order_id BETWEEN ?0 AND 10)", stmt.Where.String())

	err = WalkStatement(unknownStatement{}, func(Expr) bool { return true })
	assert.True(t, IsUnknownStatementErr(err))
}

func TestInsertStatement(t *testing.T) {
	stmt := &InsertStatement{
		Table:   &TableSegment{Name: "t_order"},
		Columns: []*ColumnSegment{{Name: "user_id"}, {Name: "status"}},
		Values: []*InsertValues{
			{Values: []Expr{&ParamExpr{Index: 0}, &ParamExpr{Index: 1}}},
			{Values: []Expr{&ParamExpr{Index: 2}, &LiteralExpr{Value: "it's"}}},
		},
		OnDuplicate: []*Assignment{
			{Column: &ColumnSegment{Name: "status"}, Value: &ParamExpr{Index: 3}},
		},
	}
	assert.Equal(t, SQLTypeInsert, stmt.Mode())
	assert.Equal(t, 1, stmt.ColumnIndex("STATUS"))
	assert.Equal(t, -1, stmt.ColumnIndex("order_id"))

	var params []int
	assert.NoError(t, WalkStatement(stmt, func(e Expr) bool {
		if p, ok := e.(*ParamExpr); ok {
			params = append(params, p.Index)
		}
		return true
	}))
	assert.Equal(t, []int{0, 1, 2, 3}, params)
	assert.Equal(t, "'it''s'", stmt.Values[1].Values[1].String())

	stmt.Values = nil
	stmt.Select = &SelectStatement{From: []*TableSegment{{Name: "t_order_history"}}}
	assert.Equal(t, SQLTypeInsertSelect, stmt.Mode())
	assert.Equal(t, []string{"t_order", "t_order_history"}, TableNames(stmt))
}

func TestIndexes(t *testing.T) {
	drop := &DropIndexStatement{Indexes: []*IndexSegment{{Name: "idx_user"}}}
	assert.Nil(t, drop.Tables())
	assert.Len(t, Indexes(drop), 1)
	assert.Nil(t, Indexes(&TruncateStatement{Table: &TableSegment{Name: "t"}}))

	create := &CreateIndexStatement{Index: &IndexSegment{Name: "idx"}, Table: &TableSegment{Name: "t"}}
	assert.Equal(t, []string{"t"}, TableNames(create))
	assert.NoError(t, WalkStatement(create, func(Expr) bool { return true }))
}

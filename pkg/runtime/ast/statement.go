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
	"strings"
)

import (
	"github.com/pkg/errors"
)

var (
	_ Statement = (*SelectStatement)(nil)
	_ Statement = (*InsertStatement)(nil)
	_ Statement = (*UpdateStatement)(nil)
	_ Statement = (*DeleteStatement)(nil)
	_ Statement = (*CreateTableStatement)(nil)
	_ Statement = (*AlterTableStatement)(nil)
	_ Statement = (*DropTableStatement)(nil)
	_ Statement = (*TruncateStatement)(nil)
	_ Statement = (*CreateIndexStatement)(nil)
	_ Statement = (*DropIndexStatement)(nil)
)

type SelectStatement struct {
	SQL         string
	Projections []Expr
	// From contains every table of FROM and JOIN clauses.
	From    []*TableSegment
	On      []Expr
	Where   Expr
	GroupBy []Expr
	OrderBy []Expr
}

func (s *SelectStatement) Mode() SQLType { return SQLTypeSelect }
func (s *SelectStatement) Text() string  { return s.SQL }
func (s *SelectStatement) isStatement()  {}

// Tables returns the tables of FROM clauses, including the ones of sub-queries.
func (s *SelectStatement) Tables() []*TableSegment {
	ret := append([]*TableSegment(nil), s.From...)
	for _, e := range s.exprs() {
		Walk(e, func(next Expr) bool {
			if sub, ok := next.(*SubqueryExpr); ok {
				ret = append(ret, sub.Select.Tables()...)
				return false
			}
			return true
		})
	}
	return ret
}

func (s *SelectStatement) exprs() []Expr {
	ret := make([]Expr, 0, len(s.Projections)+len(s.On)+len(s.GroupBy)+len(s.OrderBy)+1)
	ret = append(ret, s.Projections...)
	ret = append(ret, s.On...)
	if s.Where != nil {
		ret = append(ret, s.Where)
	}
	ret = append(ret, s.GroupBy...)
	ret = append(ret, s.OrderBy...)
	return ret
}

type InsertStatement struct {
	SQL     string
	Table   *TableSegment
	Columns []*ColumnSegment
	Values  []*InsertValues
	// Select is the source of INSERT ... SELECT, Values is empty in that case.
	Select      *SelectStatement
	OnDuplicate []*Assignment
}

func (s *InsertStatement) Mode() SQLType {
	if s.Select != nil {
		return SQLTypeInsertSelect
	}
	return SQLTypeInsert
}

func (s *InsertStatement) Text() string { return s.SQL }
func (s *InsertStatement) isStatement() {}

func (s *InsertStatement) Tables() []*TableSegment {
	ret := []*TableSegment{s.Table}
	if s.Select != nil {
		ret = append(ret, s.Select.Tables()...)
	}
	return ret
}

// ColumnIndex returns the position of the column in the column list.
func (s *InsertStatement) ColumnIndex(column string) int {
	for i, it := range s.Columns {
		if strings.EqualFold(it.Name, column) {
			return i
		}
	}
	return -1
}

type UpdateStatement struct {
	SQL     string
	Targets []*TableSegment
	Set     []*Assignment
	Where   Expr
}

func (s *UpdateStatement) Mode() SQLType { return SQLTypeUpdate }
func (s *UpdateStatement) Text() string  { return s.SQL }
func (s *UpdateStatement) isStatement()  {}

func (s *UpdateStatement) Tables() []*TableSegment {
	return s.Targets
}

type DeleteStatement struct {
	SQL     string
	Targets []*TableSegment
	Where   Expr
}

func (s *DeleteStatement) Mode() SQLType { return SQLTypeDelete }
func (s *DeleteStatement) Text() string  { return s.SQL }
func (s *DeleteStatement) isStatement()  {}

func (s *DeleteStatement) Tables() []*TableSegment {
	return s.Targets
}

// WalkStatement visits every expression of the statement, including assignment columns
// which are visited as *ColumnExpr.
func WalkStatement(stmt Statement, fn func(Expr) bool) error {
	switch s := stmt.(type) {
	case *SelectStatement:
		for _, e := range s.exprs() {
			Walk(e, fn)
		}
	case *InsertStatement:
		for _, group := range s.Values {
			for _, e := range group.Values {
				Walk(e, fn)
			}
		}
		if s.Select != nil {
			if err := WalkStatement(s.Select, fn); err != nil {
				return err
			}
		}
		walkAssignments(s.OnDuplicate, fn)
	case *UpdateStatement:
		walkAssignments(s.Set, fn)
		Walk(s.Where, fn)
	case *DeleteStatement:
		Walk(s.Where, fn)
	case *CreateTableStatement, *AlterTableStatement, *DropTableStatement,
		*TruncateStatement, *CreateIndexStatement, *DropIndexStatement:
	default:
		return errors.Wrapf(ErrUnknownStatement, "%T", stmt)
	}
	return nil
}

func walkAssignments(assignments []*Assignment, fn func(Expr) bool) {
	for _, it := range assignments {
		Walk(&ColumnExpr{Column: it.Column}, fn)
		Walk(it.Value, fn)
	}
}

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
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/route"
)

var (
	_ CollectionTokenGenerator = (*tableTokenGenerator)(nil)
	_ CollectionTokenGenerator = (*ownerTokenGenerator)(nil)
	_ CollectionTokenGenerator = (*schemaTokenGenerator)(nil)
	_ CollectionTokenGenerator = (*indexTokenGenerator)(nil)
	_ OptionalTokenGenerator   = (*insertValuesTokenGenerator)(nil)
)

// GenerateContext is the input of token generators.
type GenerateContext struct {
	SQL    string
	Stmt   ast.Statement
	Rule   *rule.ShardingRule
	Route  *route.RouteContext
	Params []interface{}
}

// Text returns the original text of the span.
func (gc *GenerateContext) Text(span ast.Span) string {
	if span.Start < 0 || span.Stop >= len(gc.SQL) || span.Stop < span.Start {
		return ""
	}
	return gc.SQL[span.Start : span.Stop+1]
}

// TokenGenerator produces tokens of one kind.
// Implementations are either OptionalTokenGenerator or CollectionTokenGenerator.
type TokenGenerator interface {
	// Applicable returns true if the generator has something to do with the statement.
	Applicable(gc *GenerateContext) bool
}

// OptionalTokenGenerator produces at most one token, a nil token means nothing.
type OptionalTokenGenerator interface {
	TokenGenerator
	GenerateToken(gc *GenerateContext) (Token, error)
}

// CollectionTokenGenerator produces any number of tokens.
type CollectionTokenGenerator interface {
	TokenGenerator
	GenerateTokens(gc *GenerateContext) ([]Token, error)
}

// DefaultGenerators returns the builtin generators.
func DefaultGenerators() []TokenGenerator {
	return []TokenGenerator{
		&tableTokenGenerator{},
		&ownerTokenGenerator{},
		&schemaTokenGenerator{},
		&indexTokenGenerator{},
		&insertValuesTokenGenerator{},
	}
}

// tableTokenGenerator renames sharding tables.
type tableTokenGenerator struct{}

func (g *tableTokenGenerator) Applicable(gc *GenerateContext) bool {
	for _, it := range gc.Stmt.Tables() {
		if it != nil && gc.Rule.IsShardingTable(it.Name) {
			return true
		}
	}
	return false
}

func (g *tableTokenGenerator) GenerateTokens(gc *GenerateContext) ([]Token, error) {
	var (
		ret    []Token
		visits = make(map[int]struct{})
	)
	for _, it := range gc.Stmt.Tables() {
		if it == nil || !gc.Rule.IsShardingTable(it.Name) {
			continue
		}
		if _, ok := visits[it.Start]; ok {
			continue
		}
		visits[it.Start] = struct{}{}
		ret = append(ret, &TableToken{
			Span:     it.Span,
			Logical:  strings.ToLower(it.Name),
			Original: gc.Text(it.Span),
		})
	}
	return ret, nil
}

// ownerTokenGenerator renames the table qualifiers of columns, aliases are left alone.
type ownerTokenGenerator struct{}

func (g *ownerTokenGenerator) Applicable(gc *GenerateContext) bool {
	return len(columns(gc.Stmt)) > 0
}

func (g *ownerTokenGenerator) GenerateTokens(gc *GenerateContext) ([]Token, error) {
	var (
		ret    []Token
		visits = make(map[int]struct{})
	)
	for _, it := range columns(gc.Stmt) {
		owner := it.Owner
		if owner == nil || !strings.EqualFold(owner.Name, it.Table) || !gc.Rule.IsShardingTable(it.Table) {
			continue
		}
		if _, ok := visits[owner.Start]; ok {
			continue
		}
		visits[owner.Start] = struct{}{}
		ret = append(ret, &OwnerToken{
			Span:     owner.Span,
			Logical:  strings.ToLower(it.Table),
			Original: gc.Text(owner.Span),
		})
	}
	return ret, nil
}

// schemaTokenGenerator removes the logical database qualifiers, which don't exist in data sources.
type schemaTokenGenerator struct{}

func (g *schemaTokenGenerator) Applicable(gc *GenerateContext) bool {
	return true
}

func (g *schemaTokenGenerator) GenerateTokens(gc *GenerateContext) ([]Token, error) {
	var (
		ret    []Token
		visits = make(map[int]struct{})
	)
	remove := func(schema *ast.OwnerSegment, next int) {
		if schema == nil || !strings.EqualFold(schema.Name, gc.Rule.Database()) || schema.Start >= next {
			return
		}
		if _, ok := visits[schema.Start]; ok {
			return
		}
		visits[schema.Start] = struct{}{}
		ret = append(ret, &RemoveToken{Span: ast.Span{Start: schema.Start, Stop: next - 1}})
	}

	for _, it := range gc.Stmt.Tables() {
		if it != nil {
			remove(it.Owner, it.Start)
		}
	}
	for _, it := range columns(gc.Stmt) {
		if it.Owner != nil {
			remove(it.Owner.Owner, it.Owner.Start)
		}
	}
	return ret, nil
}

// indexTokenGenerator renames the indexes of sharding tables.
type indexTokenGenerator struct{}

func (g *indexTokenGenerator) Applicable(gc *GenerateContext) bool {
	if len(ast.Indexes(gc.Stmt)) == 0 {
		return false
	}
	tables := gc.Stmt.Tables()
	return len(tables) == 0 || tables[0] == nil || gc.Rule.IsShardingTable(tables[0].Name)
}

func (g *indexTokenGenerator) GenerateTokens(gc *GenerateContext) ([]Token, error) {
	var table string
	if tables := gc.Stmt.Tables(); len(tables) > 0 && tables[0] != nil {
		table = strings.ToLower(tables[0].Name)
	}

	var ret []Token
	for _, it := range ast.Indexes(gc.Stmt) {
		if it == nil {
			continue
		}
		ret = append(ret, &IndexToken{
			Span:     it.Span,
			Name:     it.Name,
			Table:    table,
			Original: gc.Text(it.Span),
		})
	}
	return ret, nil
}

// insertValuesTokenGenerator splits the value groups of INSERT by the data nodes they are routed to.
type insertValuesTokenGenerator struct{}

func (g *insertValuesTokenGenerator) Applicable(gc *GenerateContext) bool {
	s, ok := gc.Stmt.(*ast.InsertStatement)
	if !ok || len(s.Values) == 0 {
		return false
	}
	// every group goes everywhere if the groups were not routed one by one
	return len(gc.Route.OriginalDataNodes) == len(s.Values)
}

func (g *insertValuesTokenGenerator) GenerateToken(gc *GenerateContext) (Token, error) {
	var (
		s     = gc.Stmt.(*ast.InsertStatement)
		nodes = gc.Route.OriginalDataNodes
		token = &InsertValuesToken{
			Span: ast.Span{
				Start: s.Values[0].Start,
				Stop:  s.Values[len(s.Values)-1].Stop,
			},
			Groups: make([]string, 0, len(s.Values)),
		}
	)
	for _, it := range s.Values {
		token.Groups = append(token.Groups, gc.Text(it.Span))
	}
	token.Covers = func(unit *route.RouteUnit, group int) bool {
		return covers(unit, nodes, group)
	}
	return token, nil
}

// covers returns true if the value group is routed to the unit, all groups are covered without
// per group data nodes.
func covers(unit *route.RouteUnit, nodes [][]rule.DataNode, group int) bool {
	if group >= len(nodes) {
		return true
	}
	for _, it := range nodes[group] {
		if unit.Covers(it) {
			return true
		}
	}
	return false
}

// columns returns every column segment of the statement.
func columns(stmt ast.Statement) []*ast.ColumnSegment {
	var ret []*ast.ColumnSegment
	if s, ok := stmt.(*ast.InsertStatement); ok {
		ret = append(ret, s.Columns...)
	}
	_ = ast.WalkStatement(stmt, func(e ast.Expr) bool {
		if c, ok := e.(*ast.ColumnExpr); ok && c.Column != nil {
			ret = append(ret, c.Column)
		}
		return true
	})
	return ret
}

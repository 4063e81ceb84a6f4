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

// Package rewrite turns a route plan into one SQL and parameter list per route unit.
package rewrite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

import (
	"github.com/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

import (
	"github.com/arana-db/sharding-core/pkg/metrics"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/route"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

var Tracer = otel.Tracer("rewrite")

var (
	// ErrOverlappedTokens is returned when two tokens replace the same text.
	ErrOverlappedTokens = errors.New("rewrite: overlapped tokens")
	// ErrInvalidToken is returned when a token is outside the sql.
	ErrInvalidToken = errors.New("rewrite: invalid token")
)

func IsOverlappedTokensErr(err error) bool {
	return errors.Is(err, ErrOverlappedTokens)
}

func IsInvalidTokenErr(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// ExecutionUnit is the rewritten statement of one route unit.
type ExecutionUnit struct {
	Unit   *route.RouteUnit
	SQL    string
	Params []interface{}
}

func (eu *ExecutionUnit) String() string {
	if len(eu.Params) == 0 {
		return fmt.Sprintf("%s: %s", eu.Unit.DataSource.Actual, eu.SQL)
	}
	return fmt.Sprintf("%s: %s %v", eu.Unit.DataSource.Actual, eu.SQL, eu.Params)
}

// Engine rewrites statements with one rule snapshot, it is safe for concurrent use.
type Engine struct {
	rule       *rule.ShardingRule
	generators []TokenGenerator
}

// NewEngine creates a rewrite engine, the builtin generators are used if none is given.
func NewEngine(ru *rule.ShardingRule, generators ...TokenGenerator) *Engine {
	if len(generators) == 0 {
		generators = DefaultGenerators()
	}
	return &Engine{
		rule:       ru,
		generators: generators,
	}
}

// Rewrite renders the statement for every unit of the route plan, in order of units.
func (e *Engine) Rewrite(ctx context.Context, stmt ast.Statement, rc *route.RouteContext, params []interface{}) ([]*ExecutionUnit, error) {
	if stmt == nil || rc == nil {
		return nil, errors.Wrap(ast.ErrUnknownStatement, "cannot rewrite without statement or route")
	}

	_, span := Tracer.Start(ctx, "Rewrite")
	span.SetAttributes(
		attribute.Key("sql.type").String(stmt.Mode().String()),
		attribute.Key("route.units").Int(len(rc.Units)),
	)
	start := time.Now()
	defer func() {
		span.End()
		metrics.RecordRewrite(time.Since(start))
	}()

	gc := &GenerateContext{
		SQL:    stmt.Text(),
		Stmt:   stmt,
		Rule:   e.rule,
		Route:  rc,
		Params: params,
	}

	tokens, err := e.generate(gc)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	builder := NewParameterBuilder(stmt, rc, params)

	ret := make([]*ExecutionUnit, 0, len(rc.Units))
	for _, unit := range rc.Units {
		eu := &ExecutionUnit{
			Unit:   unit,
			SQL:    render(gc.SQL, tokens, unit),
			Params: builder.Parameters(unit),
		}
		log.DebugfWithLogType(log.RewriteLog, "rewrite %s", eu)
		ret = append(ret, eu)
	}

	return ret, nil
}

// generate collects the tokens sorted by start, and checks they don't overlap.
func (e *Engine) generate(gc *GenerateContext) ([]Token, error) {
	var tokens []Token
	for _, g := range e.generators {
		if !g.Applicable(gc) {
			continue
		}
		switch it := g.(type) {
		case OptionalTokenGenerator:
			token, err := it.GenerateToken(gc)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			if token != nil {
				tokens = append(tokens, token)
			}
		case CollectionTokenGenerator:
			next, err := it.GenerateTokens(gc)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			tokens = append(tokens, next...)
		default:
			return nil, errors.Errorf("rewrite: unknown token generator %T", g)
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Position().Start < tokens[j].Position().Start
	})

	for i, it := range tokens {
		pos := it.Position()
		if pos.Start < 0 || pos.Stop < pos.Start-1 || pos.Stop >= len(gc.SQL) {
			return nil, errors.Wrapf(ErrInvalidToken, "%T [%d,%d] of sql with %d bytes", it, pos.Start, pos.Stop, len(gc.SQL))
		}
		if i > 0 && pos.Start <= tokens[i-1].Position().Stop {
			prev := tokens[i-1].Position()
			return nil, errors.Wrapf(ErrOverlappedTokens, "%T [%d,%d] and %T [%d,%d]",
				tokens[i-1], prev.Start, prev.Stop, it, pos.Start, pos.Stop)
		}
	}

	return tokens, nil
}

// render copies the sql and splices in the tokens, the text between tokens is kept as is.
func render(sql string, tokens []Token, unit *route.RouteUnit) string {
	if len(tokens) == 0 {
		return sql
	}

	var (
		sb     strings.Builder
		cursor int
	)
	sb.Grow(len(sql) + 8*len(tokens))
	for _, it := range tokens {
		pos := it.Position()
		sb.WriteString(sql[cursor:pos.Start])
		sb.WriteString(it.Render(unit))
		cursor = pos.Stop + 1
	}
	sb.WriteString(sql[cursor:])
	return sb.String()
}

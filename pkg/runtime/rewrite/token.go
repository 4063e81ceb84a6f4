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
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/route"
)

var (
	_ Token = (*TableToken)(nil)
	_ Token = (*OwnerToken)(nil)
	_ Token = (*RemoveToken)(nil)
	_ Token = (*IndexToken)(nil)
	_ Token = (*InsertValuesToken)(nil)
)

// Token replaces a span of the original SQL for each route unit.
type Token interface {
	// Position returns the inclusive byte range of the replaced text.
	Position() ast.Span
	// Render returns the text written in place of the span for the unit.
	Render(unit *route.RouteUnit) string
}

// TableToken replaces a logical table name by the actual one.
type TableToken struct {
	ast.Span
	Logical  string
	Original string
}

func (t *TableToken) Position() ast.Span {
	return t.Span
}

func (t *TableToken) Render(unit *route.RouteUnit) string {
	m, ok := unit.FindTable(t.Logical)
	if !ok {
		return t.Original
	}
	return requote(t.Original, m.Actual)
}

// OwnerToken replaces the table qualifier of a column, eg: 't_order' of 't_order.user_id'.
type OwnerToken struct {
	ast.Span
	Logical  string
	Original string
}

func (t *OwnerToken) Position() ast.Span {
	return t.Span
}

func (t *OwnerToken) Render(unit *route.RouteUnit) string {
	m, ok := unit.FindTable(t.Logical)
	if !ok {
		return t.Original
	}
	return requote(t.Original, m.Actual)
}

// RemoveToken removes the span, eg: the logical schema qualifier 'employees.'.
type RemoveToken struct {
	ast.Span
}

func (t *RemoveToken) Position() ast.Span {
	return t.Span
}

func (t *RemoveToken) Render(_ *route.RouteUnit) string {
	return ""
}

// IndexToken appends the actual table name to an index name, which keeps index names
// unique when several actual tables live in one data source.
type IndexToken struct {
	ast.Span
	Name string
	// Table is the logical table of the index, empty if the statement omits it.
	Table    string
	Original string
}

func (t *IndexToken) Position() ast.Span {
	return t.Span
}

func (t *IndexToken) Render(unit *route.RouteUnit) string {
	var (
		m  route.RouteMapper
		ok bool
	)
	switch {
	case len(t.Table) > 0:
		m, ok = unit.FindTable(t.Table)
	case len(unit.Tables) > 0:
		m, ok = unit.Tables[0], true
	}
	if !ok || strings.EqualFold(m.Logical, m.Actual) {
		return t.Original
	}
	return requote(t.Original, t.Name+"_"+m.Actual)
}

// InsertValuesToken keeps the value groups which are routed to the unit.
type InsertValuesToken struct {
	ast.Span
	// Groups are the original text of value groups.
	Groups []string
	// Covers reports whether the value group belongs to the unit.
	Covers func(unit *route.RouteUnit, group int) bool
}

func (t *InsertValuesToken) Position() ast.Span {
	return t.Span
}

func (t *InsertValuesToken) Render(unit *route.RouteUnit) string {
	var sb strings.Builder
	for i, it := range t.Groups {
		if !t.Covers(unit, i) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it)
	}
	return sb.String()
}

// requote wraps the name with the quote character of the original text.
func requote(original, name string) string {
	if n := len(original); n >= 2 {
		if q := original[0]; (q == '`' || q == '"') && original[n-1] == q {
			return string(q) + name + string(q)
		}
	}
	return name
}

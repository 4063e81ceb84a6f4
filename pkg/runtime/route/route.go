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

// Package route decides which physical data sources and tables a bound statement touches.
package route

import (
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

// RouteMapper maps a logical name to an actual name.
type RouteMapper struct {
	Logical string
	Actual  string
}

func (m RouteMapper) String() string {
	if m.Logical == m.Actual {
		return m.Actual
	}
	return m.Logical + "->" + m.Actual
}

// RouteUnit is one physical destination of a statement.
type RouteUnit struct {
	DataSource RouteMapper
	// Tables is ordered by the first appearance of the logical tables in the statement.
	Tables []RouteMapper
}

// FindTable returns the table mapper of the logical table.
func (u *RouteUnit) FindTable(logical string) (RouteMapper, bool) {
	for _, it := range u.Tables {
		if strings.EqualFold(it.Logical, logical) {
			return it, true
		}
	}
	return RouteMapper{}, false
}

// ActualTable returns the actual name of the logical table, the logical name is kept if absent.
func (u *RouteUnit) ActualTable(logical string) string {
	if m, ok := u.FindTable(logical); ok {
		return m.Actual
	}
	return logical
}

// Covers returns true if the data node is a destination of current unit.
func (u *RouteUnit) Covers(node rule.DataNode) bool {
	if u.DataSource.Actual != node.DataSource {
		return false
	}
	for _, it := range u.Tables {
		if strings.EqualFold(it.Actual, node.Table) {
			return true
		}
	}
	return false
}

func (u *RouteUnit) String() string {
	var sb strings.Builder
	sb.WriteString(u.DataSource.String())
	sb.WriteByte('[')
	for i, it := range u.Tables {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(it.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// RouteContext is the route plan of one statement.
type RouteContext struct {
	Units []*RouteUnit
	// OriginalDataNodes is the destination of each INSERT value group, indexed by group.
	OriginalDataNodes [][]rule.DataNode
}

// IsSingleRouting returns true if the statement goes to exactly one destination.
func (rc *RouteContext) IsSingleRouting() bool {
	return len(rc.Units) == 1
}

// DataSources returns the distinct actual data sources in order of units.
func (rc *RouteContext) DataSources() []string {
	var ret []string
	for _, it := range rc.Units {
		exists := false
		for _, ds := range ret {
			if ds == it.DataSource.Actual {
				exists = true
				break
			}
		}
		if !exists {
			ret = append(ret, it.DataSource.Actual)
		}
	}
	return ret
}

// DataNodes returns every (data source, table) pair of the logical table.
func (rc *RouteContext) DataNodes(logical string) []rule.DataNode {
	var ret []rule.DataNode
	for _, it := range rc.Units {
		if m, ok := it.FindTable(logical); ok {
			ret = append(ret, rule.DataNode{DataSource: it.DataSource.Actual, Table: m.Actual})
		}
	}
	return ret
}

func (rc *RouteContext) String() string {
	var sb strings.Builder
	for i, it := range rc.Units {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(it.String())
	}
	return sb.String()
}

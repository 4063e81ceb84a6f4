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

package rule

import (
	"strings"
)

import (
	"github.com/pkg/errors"
)

// DataNode is one physical location of a logical table.
type DataNode struct {
	DataSource string
	Table      string
}

// ParseDataNode parses a data node from the form 'ds_0.t_order_0'.
func ParseDataNode(s string) (DataNode, error) {
	i := strings.IndexByte(s, '.')
	if i <= 0 || i == len(s)-1 || strings.IndexByte(s[i+1:], '.') != -1 {
		return DataNode{}, errors.Wrapf(ErrConfiguration, "invalid data node '%s'", s)
	}
	return DataNode{
		DataSource: strings.TrimSpace(s[:i]),
		Table:      strings.TrimSpace(s[i+1:]),
	}, nil
}

func (n DataNode) String() string {
	return n.DataSource + "." + n.Table
}

// TableOption configures a TableRule.
type TableOption func(*TableRule)

// WithDatabaseStrategy sets the database axis strategy of the table.
func WithDatabaseStrategy(s Strategy) TableOption {
	return func(tr *TableRule) {
		tr.dbStrategy = s
	}
}

// WithTableStrategy sets the table axis strategy of the table.
func WithTableStrategy(s Strategy) TableOption {
	return func(tr *TableRule) {
		tr.tbStrategy = s
	}
}

// WithGenerateKeyColumn sets the column filled by the key generator.
func WithGenerateKeyColumn(column string) TableOption {
	return func(tr *TableRule) {
		tr.generateKeyColumn = column
	}
}

// TableRule describes where the rows of one logical table live.
type TableRule struct {
	logicTable        string
	nodes             []DataNode
	dataSources       []string
	tables            map[string][]string // data source -> actual tables
	dbStrategy        Strategy
	tbStrategy        Strategy
	generateKeyColumn string
}

// NewTableRule creates a table rule, the order of nodes is kept as the target order.
func NewTableRule(logicTable string, nodes []DataNode, opts ...TableOption) (*TableRule, error) {
	if len(logicTable) == 0 {
		return nil, errors.Wrap(ErrConfiguration, "empty logic table name")
	}
	if len(nodes) == 0 {
		return nil, errors.Wrapf(ErrConfiguration, "no actual data nodes for table '%s'", logicTable)
	}

	tr := &TableRule{
		logicTable: strings.ToLower(logicTable),
		tables:     make(map[string][]string),
	}

	visits := make(map[DataNode]struct{}, len(nodes))
	for _, it := range nodes {
		if _, ok := visits[it]; ok {
			return nil, errors.Wrapf(ErrConfiguration, "duplicated data node '%s' for table '%s'", it, logicTable)
		}
		visits[it] = struct{}{}
		if _, ok := tr.tables[it.DataSource]; !ok {
			tr.dataSources = append(tr.dataSources, it.DataSource)
		}
		tr.tables[it.DataSource] = append(tr.tables[it.DataSource], it.Table)
		tr.nodes = append(tr.nodes, it)
	}

	for _, opt := range opts {
		opt(tr)
	}

	return tr, nil
}

func (tr *TableRule) LogicTable() string {
	return tr.logicTable
}

// DataNodes returns all actual data nodes in configured order.
func (tr *TableRule) DataNodes() []DataNode {
	return tr.nodes
}

// DataSources returns the data sources holding the table, in configured order.
func (tr *TableRule) DataSources() []string {
	return tr.dataSources
}

// ActualTables returns the actual tables on the given data source.
func (tr *TableRule) ActualTables(dataSource string) []string {
	return tr.tables[dataSource]
}

// AllActualTables returns the distinct actual table names over all data sources.
func (tr *TableRule) AllActualTables() []string {
	var (
		ret    []string
		visits = make(map[string]struct{})
	)
	for _, it := range tr.nodes {
		if _, ok := visits[it.Table]; ok {
			continue
		}
		visits[it.Table] = struct{}{}
		ret = append(ret, it.Table)
	}
	return ret
}

func (tr *TableRule) DatabaseStrategy() Strategy {
	return tr.dbStrategy
}

func (tr *TableRule) TableStrategy() Strategy {
	return tr.tbStrategy
}

func (tr *TableRule) GenerateKeyColumn() string {
	return tr.generateKeyColumn
}

// Position returns the position of the data node, ds is the index of the data source
// and tb is the index of the table on that data source.
func (tr *TableRule) Position(node DataNode) (ds, tb uint32, ok bool) {
	for i, it := range tr.dataSources {
		if it != node.DataSource {
			continue
		}
		for j, table := range tr.tables[it] {
			if strings.EqualFold(table, node.Table) {
				return uint32(i), uint32(j), true
			}
		}
		return
	}
	return
}

// Node returns the data node at the given position.
func (tr *TableRule) Node(ds, tb uint32) (DataNode, bool) {
	if int(ds) >= len(tr.dataSources) {
		return DataNode{}, false
	}
	name := tr.dataSources[ds]
	tables := tr.tables[name]
	if int(tb) >= len(tables) {
		return DataNode{}, false
	}
	return DataNode{DataSource: name, Table: tables[tb]}, true
}

// AllShards returns the positions of all data nodes.
func (tr *TableRule) AllShards() *Shards {
	ret := NewShards()
	for i, ds := range tr.dataSources {
		for j := range tr.tables[ds] {
			ret.Add(uint32(i), uint32(j))
		}
	}
	return ret
}

// NeedsRename returns true if any actual table differs from the logic table.
func (tr *TableRule) NeedsRename() bool {
	for _, it := range tr.nodes {
		if !strings.EqualFold(it.Table, tr.logicTable) {
			return true
		}
	}
	return false
}

// sameShape returns true if both rules own the same count of tables on every data source.
func (tr *TableRule) sameShape(other *TableRule) bool {
	if len(tr.dataSources) != len(other.dataSources) {
		return false
	}
	for _, ds := range tr.dataSources {
		if len(tr.tables[ds]) != len(other.tables[ds]) {
			return false
		}
	}
	return true
}

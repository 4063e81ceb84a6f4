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

package testdata

import (
	"fmt"
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/algorithm"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/schema"
)

// NewSimpleOrderRule returns a rule with one data source 'ds_0', and the table 't_order'
// which is split into 't_order_0' and 't_order_1' by 'user_id % 2'.
func NewSimpleOrderRule(opts ...rule.Option) *rule.ShardingRule {
	tr := mustTableRule("t_order", nodes("ds_0", "t_order", 0, 1),
		rule.WithTableStrategy(modStrategy("user_id", 2)))
	return mustRule("employees", []string{"ds_0"}, append([]rule.Option{rule.WithTableRule(tr)}, opts...)...)
}

// NewOrderRule returns a rule with the data sources 'ds_0' and 'ds_1':
//   - t_order, t_order_item: ds_${0..1}.xxx_${0..1}, database by 'user_id % 2', table by 'order_id % 2', bound together
//   - t_user: ds_${0..1}.t_user, database by 'user_id % 2'
//   - t_log: ds_${0..1}.t_log_${0..1}, both axes by hint
//   - t_dict: broadcast
func NewOrderRule(opts ...rule.Option) *rule.ShardingRule {
	var (
		order = mustTableRule("t_order", nodes2("t_order"),
			rule.WithDatabaseStrategy(modStrategy("user_id", 2)),
			rule.WithGenerateKeyColumn("order_id"),
		)
		orderItem = mustTableRule("t_order_item", nodes2("t_order_item"),
			rule.WithDatabaseStrategy(modStrategy("user_id", 2)),
		)
		user = mustTableRule("t_user", append(nodes("ds_0", "t_user"), nodes("ds_1", "t_user")...),
			rule.WithDatabaseStrategy(modStrategy("user_id", 2)),
			rule.WithTableStrategy(&rule.NoneStrategy{}),
		)
		logs = mustTableRule("t_log", nodes2("t_log"),
			rule.WithDatabaseStrategy(hintStrategy("ds_${value % 2}")),
			rule.WithTableStrategy(hintStrategy("t_log_${value % 2}")),
		)
	)

	base := []rule.Option{
		rule.WithTableRule(order, orderItem, user, logs),
		rule.WithBindingGroup("t_order", "t_order_item"),
		rule.WithBroadcastTables("t_dict"),
		rule.WithDefaultTableStrategy(modStrategy("order_id", 2)),
	}
	return mustRule("employees", []string{"ds_0", "ds_1"}, append(base, opts...)...)
}

// NewCatalog returns the metadata of NewOrderRule: single tables 't_config' on 'ds_0' and 't_audit'
// on 'ds_1', plus the indexes of some logical tables.
func NewCatalog() *schema.Catalog {
	c := schema.NewCatalog()
	if err := c.Register(
		proto.NewTableMetadata("ds_0", "t_config", "idx_config_name"),
		proto.NewTableMetadata("ds_1", "t_audit", "idx_audit_time"),
		proto.NewTableMetadata("", "t_order", "idx_order_user"),
		proto.NewTableMetadata("", "t_dict", "idx_dict_code"),
	); err != nil {
		panic(err)
	}
	return c
}

// Locate returns the span of the nth (zero-based) occurrence of the identifier or token in the sql.
// Identifier occurrences must not be a part of a longer identifier.
func Locate(sql, token string, nth int) ast.Span {
	from := 0
	for {
		i := strings.Index(strings.ToLower(sql[from:]), strings.ToLower(token))
		if i < 0 {
			panic(fmt.Sprintf("no occurrence #%d of '%s' in '%s'", nth, token, sql))
		}
		start := from + i
		stop := start + len(token) - 1
		from = start + 1
		if isIdent(token[0]) && start > 0 && isIdent(sql[start-1]) {
			continue
		}
		if isIdent(token[len(token)-1]) && stop+1 < len(sql) && isIdent(sql[stop+1]) {
			continue
		}
		if nth == 0 {
			return ast.Span{Start: start, Stop: stop}
		}
		nth--
	}
}

// Table creates the table segment of the nth occurrence of the name.
func Table(sql, name string, nth int) *ast.TableSegment {
	return &ast.TableSegment{Span: Locate(sql, name, nth), Name: name}
}

// Column creates the column segment of the nth occurrence of the name, bound to the logical table.
func Column(sql, table, name string, nth int) *ast.ColumnSegment {
	return &ast.ColumnSegment{Span: Locate(sql, name, nth), Name: name, Table: table}
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func nodes(ds, table string, suffixes ...int) []rule.DataNode {
	if len(suffixes) == 0 {
		return []rule.DataNode{{DataSource: ds, Table: table}}
	}
	ret := make([]rule.DataNode, 0, len(suffixes))
	for _, it := range suffixes {
		ret = append(ret, rule.DataNode{DataSource: ds, Table: fmt.Sprintf("%s_%d", table, it)})
	}
	return ret
}

func nodes2(table string) []rule.DataNode {
	return append(nodes("ds_0", table, 0, 1), nodes("ds_1", table, 0, 1)...)
}

func modStrategy(column string, count int) *rule.StandardStrategy {
	alg, err := algorithm.NewMod(algorithm.Props{algorithm.PropShardingCount: fmt.Sprint(count)})
	if err != nil {
		panic(err)
	}
	return &rule.StandardStrategy{ShardingColumn: column, Algorithm: alg.(rule.StandardAlgorithm)}
}

func hintStrategy(expr string) *rule.HintStrategy {
	alg, err := algorithm.NewHintInline(algorithm.Props{algorithm.PropAlgorithmExpression: expr})
	if err != nil {
		panic(err)
	}
	return &rule.HintStrategy{Algorithm: alg.(rule.HintAlgorithm)}
}

func mustTableRule(name string, nodes []rule.DataNode, opts ...rule.TableOption) *rule.TableRule {
	tr, err := rule.NewTableRule(name, nodes, opts...)
	if err != nil {
		panic(err)
	}
	return tr
}

func mustRule(database string, dataSources []string, opts ...rule.Option) *rule.ShardingRule {
	ru, err := rule.NewShardingRule(database, dataSources, opts...)
	if err != nil {
		panic(err)
	}
	return ru
}

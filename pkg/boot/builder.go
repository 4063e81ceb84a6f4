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

package boot

import (
	"strings"
)

import (
	"github.com/pkg/errors"

	"go.uber.org/multierr"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/algorithm"
	"github.com/arana-db/sharding-core/pkg/schema"
)

// BuildShardingRule builds the sharding rule of the configuration.
// All configuration errors are collected and returned together, each one wraps rule.ErrConfiguration.
func BuildShardingRule(data *config.Data, registry *algorithm.Registry) (*rule.ShardingRule, error) {
	if data == nil {
		return nil, errors.Wrap(rule.ErrConfiguration, "no sharding configuration")
	}

	var merr error

	dataSources, err := config.ExpandInlines(data.DataSources)
	if err != nil {
		merr = multierr.Append(merr, configurationErr(err, "data sources"))
	}

	opts := make([]rule.Option, 0, len(data.Tables)+8)
	for _, it := range data.Tables {
		tr, err := buildTableRule(it, dataSources, registry)
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		opts = append(opts, rule.WithTableRule(tr))
	}

	for _, group := range data.BindingGroups() {
		opts = append(opts, rule.WithBindingGroup(group...))
	}
	if len(data.BroadcastTables) > 0 {
		opts = append(opts, rule.WithBroadcastTables(data.BroadcastTables...))
	}

	if s, err := buildStrategy(data.DefaultDatabaseStrategy, registry); err != nil {
		merr = multierr.Append(merr, configurationErr(err, "default database strategy"))
	} else if s != nil {
		opts = append(opts, rule.WithDefaultDatabaseStrategy(s))
	}
	if s, err := buildStrategy(data.DefaultTableStrategy, registry); err != nil {
		merr = multierr.Append(merr, configurationErr(err, "default table strategy"))
	} else if s != nil {
		opts = append(opts, rule.WithDefaultTableStrategy(s))
	}

	if p := data.Props; p != nil {
		opts = append(opts, rule.WithProps(rule.Props{
			SQLFederationEnabled:    p.SQLFederationEnabled,
			DenyFullScan:            p.DenyFullScan,
			DefaultSingleDataSource: p.DefaultSingleDataSource,
		}))
	}

	if merr != nil {
		return nil, merr
	}

	return rule.NewShardingRule(data.Database, dataSources, opts...)
}

// BuildCatalog builds the metadata of single tables and the indexes of logical tables.
func BuildCatalog(data *config.Data) (*schema.Catalog, error) {
	c := schema.NewCatalog()
	if data == nil {
		return c, nil
	}

	tables := make([]*proto.TableMetadata, 0, len(data.SingleTables)+len(data.Tables))
	for _, it := range data.SingleTables {
		tables = append(tables, proto.NewTableMetadata(it.DataSource, it.Name, it.Indexes...))
	}
	for _, it := range data.Tables {
		if len(it.Indexes) > 0 {
			tables = append(tables, proto.NewTableMetadata("", it.Name, it.Indexes...))
		}
	}

	if err := c.Register(tables...); err != nil {
		return nil, errors.WithStack(err)
	}
	return c, nil
}

func buildTableRule(table *config.Table, dataSources []string, registry *algorithm.Registry) (*rule.TableRule, error) {
	var merr error

	nodes, err := buildDataNodes(table, dataSources)
	if err != nil {
		merr = multierr.Append(merr, configurationErr(err, "data nodes of table '%s'", table.Name))
	}

	var opts []rule.TableOption
	if s, err := buildStrategy(table.DatabaseStrategy, registry); err != nil {
		merr = multierr.Append(merr, configurationErr(err, "database strategy of table '%s'", table.Name))
	} else if s != nil {
		opts = append(opts, rule.WithDatabaseStrategy(s))
	}
	if s, err := buildStrategy(table.TableStrategy, registry); err != nil {
		merr = multierr.Append(merr, configurationErr(err, "table strategy of table '%s'", table.Name))
	} else if s != nil {
		opts = append(opts, rule.WithTableStrategy(s))
	}
	if len(table.GenerateKeyColumn) > 0 {
		opts = append(opts, rule.WithGenerateKeyColumn(table.GenerateKeyColumn))
	}

	if merr != nil {
		return nil, merr
	}

	return rule.NewTableRule(table.Name, nodes, opts...)
}

// buildDataNodes expands the data nodes of the table, a table without data nodes
// lives on every data source with its logical name.
func buildDataNodes(table *config.Table, dataSources []string) ([]rule.DataNode, error) {
	if len(table.DataNodes) == 0 {
		ret := make([]rule.DataNode, 0, len(dataSources))
		for _, ds := range dataSources {
			ret = append(ret, rule.DataNode{DataSource: ds, Table: strings.ToLower(table.Name)})
		}
		return ret, nil
	}

	names, err := config.ExpandInlines(table.DataNodes)
	if err != nil {
		return nil, err
	}

	ret := make([]rule.DataNode, 0, len(names))
	for _, it := range names {
		node, err := rule.ParseDataNode(it)
		if err != nil {
			return nil, err
		}
		ret = append(ret, node)
	}
	return ret, nil
}

func buildStrategy(s *config.Strategy, registry *algorithm.Registry) (rule.Strategy, error) {
	if s == nil {
		return nil, nil
	}

	typ := strings.ToLower(strings.TrimSpace(s.Type))
	if typ == config.StrategyNone {
		return &rule.NoneStrategy{}, nil
	}
	if s.Algorithm == nil {
		return nil, errors.Errorf("missing algorithm of %s strategy", typ)
	}

	props := make(algorithm.Props, len(s.Algorithm.Props)+1)
	for k, v := range s.Algorithm.Props {
		props[k] = v
	}
	if typ == config.StrategyComplex {
		if _, ok := props[algorithm.PropShardingColumns]; !ok {
			props[algorithm.PropShardingColumns] = strings.Join(s.Columns, ",")
		}
	}

	alg, err := registry.New(s.Algorithm.Type, props)
	if err != nil {
		return nil, err
	}

	switch typ {
	case config.StrategyStandard, "":
		a, ok := alg.(rule.StandardAlgorithm)
		if !ok {
			return nil, errors.Errorf("algorithm %s cannot be used by standard strategy", alg.Type())
		}
		return &rule.StandardStrategy{ShardingColumn: strings.ToLower(s.Column), Algorithm: a}, nil
	case config.StrategyComplex:
		a, ok := alg.(rule.ComplexAlgorithm)
		if !ok {
			return nil, errors.Errorf("algorithm %s cannot be used by complex strategy", alg.Type())
		}
		columns := make([]string, 0, len(s.Columns))
		for _, it := range s.Columns {
			columns = append(columns, strings.ToLower(it))
		}
		return &rule.ComplexStrategy{ShardingColumns: columns, Algorithm: a}, nil
	case config.StrategyHint:
		a, ok := alg.(rule.HintAlgorithm)
		if !ok {
			return nil, errors.Errorf("algorithm %s cannot be used by hint strategy", alg.Type())
		}
		return &rule.HintStrategy{Algorithm: a}, nil
	default:
		return nil, errors.Errorf("unknown strategy type '%s'", s.Type)
	}
}

func configurationErr(err error, format string, args ...interface{}) error {
	return errors.Wrapf(rule.ErrConfiguration, format+": %v", append(args, err)...)
}

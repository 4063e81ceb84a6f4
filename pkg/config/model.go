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

package config

import (
	"strings"
)

import (
	"github.com/arana-db/sharding-core/pkg/util/log"
)

// Strategy types.
const (
	StrategyStandard = "standard"
	StrategyComplex  = "complex"
	StrategyHint     = "hint"
	StrategyNone     = "none"
)

const KindShardingRule = "ShardingRule"

type (
	// Configuration represents a sharding configuration file.
	Configuration struct {
		Kind       string                 `default:"ShardingRule" yaml:"kind" json:"kind,omitempty"`
		APIVersion string                 `default:"1.0" yaml:"apiVersion" json:"apiVersion,omitempty"`
		Metadata   map[string]interface{} `yaml:"metadata" json:"metadata"`
		Data       *Data                  `validate:"required" yaml:"data" json:"data"`
		Logging    *log.LoggingConfig     `yaml:"logging" json:"logging,omitempty"`
		Trace      *Trace                 `yaml:"trace" json:"trace,omitempty"`
	}

	// Trace configures the exporter of spans, tracing is disabled if absent.
	Trace struct {
		Type    string `default:"jaeger" validate:"oneof=jaeger" yaml:"type" json:"type"`
		Address string `validate:"required" yaml:"address" json:"address"`
	}

	// Data describes one logical database.
	Data struct {
		Tenant   string `default:"default" yaml:"tenant" json:"tenant"`
		Database string `validate:"required" yaml:"database" json:"database"`
		// DataSources are the physical data sources, inline expressions are expanded.
		DataSources             []string       `validate:"required,min=1" yaml:"data_sources" json:"data_sources"`
		Tables                  []*Table       `validate:"dive" yaml:"tables" json:"tables,omitempty"`
		BindingTables           []string       `yaml:"binding_tables" json:"binding_tables,omitempty"`
		BroadcastTables         []string       `yaml:"broadcast_tables" json:"broadcast_tables,omitempty"`
		DefaultDatabaseStrategy *Strategy      `yaml:"default_database_strategy" json:"default_database_strategy,omitempty"`
		DefaultTableStrategy    *Strategy      `yaml:"default_table_strategy" json:"default_table_strategy,omitempty"`
		SingleTables            []*SingleTable `validate:"dive" yaml:"single_tables" json:"single_tables,omitempty"`
		Props                   *Props         `yaml:"props" json:"props,omitempty"`
		PlanCache               *PlanCache     `yaml:"plan_cache" json:"plan_cache,omitempty"`
	}

	// Table is the sharding rule of a logical table.
	Table struct {
		Name string `validate:"required" yaml:"name" json:"name"`
		// DataNodes lists the physical tables in the form 'ds.table', inline expressions are expanded.
		// Empty means the logical table itself on every data source.
		DataNodes         []string  `yaml:"data_nodes" json:"data_nodes,omitempty"`
		DatabaseStrategy  *Strategy `yaml:"database_strategy" json:"database_strategy,omitempty"`
		TableStrategy     *Strategy `yaml:"table_strategy" json:"table_strategy,omitempty"`
		GenerateKeyColumn string    `yaml:"generate_key_column" json:"generate_key_column,omitempty"`
		Indexes           []string  `yaml:"indexes" json:"indexes,omitempty"`
	}

	Strategy struct {
		Type      string     `default:"standard" validate:"oneof=standard complex hint none" yaml:"type" json:"type"`
		Column    string     `validate:"required_if=Type standard" yaml:"column" json:"column,omitempty"`
		Columns   []string   `validate:"required_if=Type complex" yaml:"columns" json:"columns,omitempty"`
		Algorithm *Algorithm `validate:"required_unless=Type none" yaml:"algorithm" json:"algorithm,omitempty"`
	}

	Algorithm struct {
		Type  string            `validate:"required" yaml:"type" json:"type"`
		Props map[string]string `yaml:"props" json:"props,omitempty"`
	}

	// SingleTable locates a table which is neither sharding nor broadcast.
	SingleTable struct {
		Name       string   `validate:"required" yaml:"name" json:"name"`
		DataSource string   `validate:"required" yaml:"data_source" json:"data_source"`
		Indexes    []string `yaml:"indexes" json:"indexes,omitempty"`
	}

	Props struct {
		SQLFederationEnabled    bool   `yaml:"sql_federation_enabled" json:"sql_federation_enabled"`
		DenyFullScan            bool   `yaml:"deny_full_scan" json:"deny_full_scan"`
		DefaultSingleDataSource string `yaml:"default_single_data_source" json:"default_single_data_source,omitempty"`
	}

	PlanCache struct {
		Size int `default:"1024" validate:"gte=0" yaml:"size" json:"size"`
	}
)

// BindingGroups splits the binding declarations, eg: 't_order, t_order_item'.
func (d *Data) BindingGroups() [][]string {
	ret := make([][]string, 0, len(d.BindingTables))
	for _, it := range d.BindingTables {
		var group []string
		for _, name := range strings.Split(it, ",") {
			if name = strings.TrimSpace(name); len(name) > 0 {
				group = append(group, name)
			}
		}
		if len(group) > 0 {
			ret = append(ret, group)
		}
	}
	return ret
}

// ShardingColumns returns the sharding columns of the strategy.
func (s *Strategy) ShardingColumns() []string {
	if s == nil {
		return nil
	}
	switch s.Type {
	case StrategyStandard:
		if len(s.Column) > 0 {
			return []string{s.Column}
		}
	case StrategyComplex:
		return s.Columns
	}
	return nil
}

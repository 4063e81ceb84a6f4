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

	"go.uber.org/multierr"
)

// ErrConfiguration is the root of all errors raised while building a sharding rule.
var ErrConfiguration = errors.New("invalid sharding configuration")

// IsConfigurationErr returns true if the error is caused by an invalid sharding configuration.
func IsConfigurationErr(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Props holds the switches of a sharding rule.
type Props struct {
	// SQLFederationEnabled allows SELECT over single tables living in different data sources.
	SQLFederationEnabled bool
	// DenyFullScan rejects DML which would be sent to every data node.
	DenyFullScan bool
	// DefaultSingleDataSource is the data source of newly created single tables.
	DefaultSingleDataSource string
}

// Option configures a ShardingRule.
type Option func(*builder)

type builder struct {
	tables     []*TableRule
	bindings   [][]string
	broadcasts []string
	defaultDB  Strategy
	defaultTB  Strategy
	props      Props
}

func WithTableRule(tr ...*TableRule) Option {
	return func(b *builder) {
		b.tables = append(b.tables, tr...)
	}
}

// WithBindingGroup declares tables which always share the same shard position.
// The first table is the representative of the group.
func WithBindingGroup(tables ...string) Option {
	return func(b *builder) {
		b.bindings = append(b.bindings, tables)
	}
}

func WithBroadcastTables(tables ...string) Option {
	return func(b *builder) {
		b.broadcasts = append(b.broadcasts, tables...)
	}
}

func WithDefaultDatabaseStrategy(s Strategy) Option {
	return func(b *builder) {
		b.defaultDB = s
	}
}

func WithDefaultTableStrategy(s Strategy) Option {
	return func(b *builder) {
		b.defaultTB = s
	}
}

func WithProps(props Props) Option {
	return func(b *builder) {
		b.props = props
	}
}

// ShardingRule is the immutable sharding configuration of one logical database.
// It is never modified after being built, so concurrent reads need no locks.
type ShardingRule struct {
	database    string
	dataSources []string
	tables      map[string]*TableRule
	tableNames  []string
	bindings    []*BindingGroup
	bindingOf   map[string]*BindingGroup
	broadcasts  map[string]struct{}
	defaultDB   Strategy
	defaultTB   Strategy
	props       Props
}

// NewShardingRule builds a sharding rule, all configuration errors are collected and returned together.
func NewShardingRule(database string, dataSources []string, opts ...Option) (*ShardingRule, error) {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	var merr error

	if len(database) == 0 {
		merr = multierr.Append(merr, errors.Wrap(ErrConfiguration, "empty database name"))
	}
	if len(dataSources) == 0 {
		merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration, "no data source for database '%s'", database))
	}

	ru := &ShardingRule{
		database:    database,
		dataSources: dataSources,
		tables:      make(map[string]*TableRule, len(b.tables)),
		bindingOf:   make(map[string]*BindingGroup),
		broadcasts:  make(map[string]struct{}, len(b.broadcasts)),
		defaultDB:   b.defaultDB,
		defaultTB:   b.defaultTB,
		props:       b.props,
	}

	knownDataSources := make(map[string]struct{}, len(dataSources))
	for _, it := range dataSources {
		if _, ok := knownDataSources[it]; ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration, "duplicated data source '%s'", it))
		}
		knownDataSources[it] = struct{}{}
	}

	if len(b.props.DefaultSingleDataSource) > 0 {
		if _, ok := knownDataSources[b.props.DefaultSingleDataSource]; !ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
				"default single data source '%s' doesn't exist", b.props.DefaultSingleDataSource))
		}
	}

	merr = multierr.Append(merr, validateStrategy("default database strategy", b.defaultDB))
	merr = multierr.Append(merr, validateStrategy("default table strategy", b.defaultTB))

	for _, tr := range b.tables {
		name := tr.LogicTable()
		if _, ok := ru.tables[name]; ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration, "duplicated table rule '%s'", name))
			continue
		}
		for _, ds := range tr.DataSources() {
			if _, ok := knownDataSources[ds]; !ok {
				merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
					"table '%s' references unknown data source '%s'", name, ds))
			}
		}
		merr = multierr.Append(merr, validateStrategy("database strategy of table '"+name+"'", tr.dbStrategy))
		merr = multierr.Append(merr, validateStrategy("table strategy of table '"+name+"'", tr.tbStrategy))
		ru.tables[name] = tr
		ru.tableNames = append(ru.tableNames, name)
	}

	for _, it := range b.broadcasts {
		name := strings.ToLower(it)
		if _, ok := ru.tables[name]; ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
				"table '%s' cannot be both sharding and broadcast", name))
			continue
		}
		ru.broadcasts[name] = struct{}{}
	}

	for _, group := range b.bindings {
		bg, err := ru.newBindingGroup(group)
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		ru.bindings = append(ru.bindings, bg)
		for _, it := range bg.tables {
			ru.bindingOf[it] = bg
		}
	}

	if merr != nil {
		return nil, merr
	}

	return ru, nil
}

func (ru *ShardingRule) newBindingGroup(tables []string) (*BindingGroup, error) {
	if len(tables) < 2 {
		return nil, errors.Wrapf(ErrConfiguration, "binding group %v should contain at least two tables", tables)
	}
	var (
		merr error
		bg   = &BindingGroup{tables: make([]string, 0, len(tables))}
		head *TableRule
	)
	for _, it := range tables {
		name := strings.ToLower(it)
		tr, ok := ru.tables[name]
		if !ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
				"binding group references table '%s' which is not a sharding table", name))
			continue
		}
		if _, ok := ru.bindingOf[name]; ok {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
				"table '%s' belongs to more than one binding group", name))
			continue
		}
		if bg.Contains(name) {
			continue
		}
		if head == nil {
			head = tr
		} else if !head.sameShape(tr) {
			merr = multierr.Append(merr, errors.Wrapf(ErrConfiguration,
				"binding tables '%s' and '%s' have different data node distributions", head.LogicTable(), name))
			continue
		}
		bg.tables = append(bg.tables, name)
	}
	if merr != nil {
		return nil, merr
	}
	return bg, nil
}

func validateStrategy(name string, s Strategy) error {
	switch st := s.(type) {
	case nil, *NoneStrategy:
		return nil
	case *StandardStrategy:
		if len(st.ShardingColumn) == 0 {
			return errors.Wrapf(ErrConfiguration, "%s: missing sharding column", name)
		}
		if st.Algorithm == nil {
			return errors.Wrapf(ErrConfiguration, "%s: missing sharding algorithm", name)
		}
		if _, ok := st.Algorithm.(RangeAlgorithm); !ok {
			return errors.Wrapf(ErrConfiguration, "%s: algorithm %s doesn't support range sharding", name, st.Algorithm.Type())
		}
	case *ComplexStrategy:
		if len(st.ShardingColumns) == 0 {
			return errors.Wrapf(ErrConfiguration, "%s: missing sharding columns", name)
		}
		if st.Algorithm == nil {
			return errors.Wrapf(ErrConfiguration, "%s: missing sharding algorithm", name)
		}
	case *HintStrategy:
		if st.Algorithm == nil {
			return errors.Wrapf(ErrConfiguration, "%s: missing sharding algorithm", name)
		}
	default:
		return errors.Wrapf(ErrConfiguration, "%s: unknown strategy %T", name, s)
	}
	return nil
}

// Database returns the logical database name.
func (ru *ShardingRule) Database() string {
	return ru.database
}

// DataSourceNames returns the physical data sources in configured order.
func (ru *ShardingRule) DataSourceNames() []string {
	return ru.dataSources
}

func (ru *ShardingRule) Props() Props {
	return ru.props
}

// TableRule returns the table rule of the logic table.
func (ru *ShardingRule) TableRule(table string) (*TableRule, bool) {
	tr, ok := ru.tables[strings.ToLower(table)]
	return tr, ok
}

// TableRules returns all table rules in configured order.
func (ru *ShardingRule) TableRules() []*TableRule {
	ret := make([]*TableRule, 0, len(ru.tableNames))
	for _, it := range ru.tableNames {
		ret = append(ret, ru.tables[it])
	}
	return ret
}

func (ru *ShardingRule) IsShardingTable(table string) bool {
	_, ok := ru.tables[strings.ToLower(table)]
	return ok
}

func (ru *ShardingRule) IsBroadcastTable(table string) bool {
	_, ok := ru.broadcasts[strings.ToLower(table)]
	return ok
}

// IsSingleTable returns true if the table is neither sharding nor broadcast.
func (ru *ShardingRule) IsSingleTable(table string) bool {
	return !ru.IsShardingTable(table) && !ru.IsBroadcastTable(table)
}

// BindingGroup returns the binding group which the table belongs to.
func (ru *ShardingRule) BindingGroup(table string) (*BindingGroup, bool) {
	bg, ok := ru.bindingOf[strings.ToLower(table)]
	return bg, ok
}

func (ru *ShardingRule) BindingGroups() []*BindingGroup {
	return ru.bindings
}

// IsAllBindingTables returns true if all tables belong to one binding group.
func (ru *ShardingRule) IsAllBindingTables(tables []string) bool {
	if len(tables) == 0 {
		return false
	}
	bg, ok := ru.BindingGroup(tables[0])
	if !ok {
		return false
	}
	for _, it := range tables[1:] {
		if !bg.Contains(it) {
			return false
		}
	}
	return true
}

// DatabaseStrategy returns the database axis strategy, falls back to the default one.
func (ru *ShardingRule) DatabaseStrategy(tr *TableRule) Strategy {
	if tr.dbStrategy != nil {
		return tr.dbStrategy
	}
	if ru.defaultDB != nil {
		return ru.defaultDB
	}
	return &NoneStrategy{}
}

// TableStrategy returns the table axis strategy, falls back to the default one.
func (ru *ShardingRule) TableStrategy(tr *TableRule) Strategy {
	if tr.tbStrategy != nil {
		return tr.tbStrategy
	}
	if ru.defaultTB != nil {
		return ru.defaultTB
	}
	return &NoneStrategy{}
}

// IsShardingColumn returns true if the column is used by either axis of the table.
func (ru *ShardingRule) IsShardingColumn(column, table string) bool {
	tr, ok := ru.TableRule(table)
	if !ok {
		return false
	}
	return hasColumn(ru.DatabaseStrategy(tr), column) || hasColumn(ru.TableStrategy(tr), column)
}

// ShardingColumns returns the distinct sharding columns of the table.
func (ru *ShardingRule) ShardingColumns(table string) []string {
	tr, ok := ru.TableRule(table)
	if !ok {
		return nil
	}
	var ret []string
	for _, s := range []Strategy{ru.DatabaseStrategy(tr), ru.TableStrategy(tr)} {
		for _, it := range s.Columns() {
			exists := false
			for _, c := range ret {
				if strings.EqualFold(c, it) {
					exists = true
					break
				}
			}
			if !exists {
				ret = append(ret, strings.ToLower(it))
			}
		}
	}
	return ret
}

// BindingActualTable returns the actual table of the logic table which is bound to
// the actual table of the other logic table on the same data source.
// Bound tables are matched by the index of the actual table on the data source.
func (ru *ShardingRule) BindingActualTable(dataSource, table, otherTable, otherActualTable string) (string, error) {
	bg, ok := ru.BindingGroup(table)
	if !ok || !bg.Contains(otherTable) {
		return "", errors.Errorf("table '%s' is not bound to '%s'", table, otherTable)
	}
	var (
		tr, _    = ru.TableRule(table)
		other, _ = ru.TableRule(otherTable)
	)
	_, tb, ok := other.Position(DataNode{DataSource: dataSource, Table: otherActualTable})
	if !ok {
		return "", errors.Errorf("no data node %s.%s for table '%s'", dataSource, otherActualTable, otherTable)
	}
	actuals := tr.ActualTables(dataSource)
	if int(tb) >= len(actuals) {
		return "", errors.Errorf("no data node #%d on '%s' for table '%s'", tb, dataSource, table)
	}
	return actuals[tb], nil
}

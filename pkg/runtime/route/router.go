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

package route

import (
	"context"
	"sort"
	"time"
)

import (
	"github.com/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

import (
	"github.com/arana-db/sharding-core/pkg/metrics"
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	"github.com/arana-db/sharding-core/pkg/runtime/condition"
	rcontext "github.com/arana-db/sharding-core/pkg/runtime/context"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

var Tracer = otel.Tracer("route")

// Router routes bound statements with one rule snapshot.
// It keeps no state between calls, so it is safe for concurrent use.
type Router struct {
	rule     *rule.ShardingRule
	metadata proto.Metadata
}

// NewRouter creates a router, the metadata is used to locate single tables and indexes.
func NewRouter(ru *rule.ShardingRule, metadata proto.Metadata) *Router {
	return &Router{
		rule:     ru,
		metadata: metadata,
	}
}

func (r *Router) Rule() *rule.ShardingRule {
	return r.rule
}

// Route computes the route plan of the statement.
func (r *Router) Route(ctx context.Context, stmt ast.Statement, params []interface{}) (rc *RouteContext, err error) {
	if stmt == nil {
		return nil, errors.Wrap(ast.ErrUnknownStatement, "cannot route nil statement")
	}

	ctx, span := Tracer.Start(ctx, "Route")
	span.SetAttributes(attribute.Key("sql.type").String(stmt.Mode().String()))
	start := time.Now()

	defer func() {
		var units int
		if rc != nil {
			units = len(rc.Units)
		}
		span.SetAttributes(attribute.Key("route.units").Int(units))
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		metrics.RecordRoute(stmt.Mode().String(), units, time.Since(start), err)
	}()

	rt := &routing{
		Router: r,
		ctx:    ctx,
		stmt:   stmt,
		params: params,
	}
	return rt.run()
}

// routing is the state of routing one statement.
type routing struct {
	*Router
	ctx    context.Context
	stmt   ast.Statement
	params []interface{}
	stage  Stage

	tables     []string
	order      map[string]int
	shardings  []string
	broadcasts []string
	singles    []string
}

func (rt *routing) advance(next Stage) {
	log.DebugfWithLogType(log.RouteLog, "%s: %s -> %s", rt.stmt.Mode(), rt.stage, next)
	rt.stage = next
}

func (rt *routing) run() (*RouteContext, error) {
	if err := rt.resolveTables(); err != nil {
		return nil, err
	}
	rt.advance(StageTablesResolved)

	if err := ValidateMultiTable(rt.rule, rt.stmt, rt.tables); err != nil {
		return nil, err
	}

	scs, err := condition.Extract(rt.stmt, rt.params, rt.rule)
	if err != nil {
		return nil, err
	}
	rt.advance(StageConditionsExtracted)
	log.DebugfWithLogType(log.RouteLog, "sharding conditions: %s", scs)

	var (
		rc       *RouteContext
		shortcut bool
	)
	switch {
	case len(rt.tables) == 0:
		if rt.stmt.Mode() != ast.SQLTypeSelect {
			return nil, errors.Wrapf(ErrTableNotFound, "no table found in %s statement", rt.stmt.Mode())
		}
		rc, shortcut = rt.routeSingleDataSource(), true
	case rt.isSingleDataSource():
		rc, shortcut = rt.routeSingleDataSource(), true
	case len(rt.shardings) > 0:
		rc, err = rt.routeSharding(scs)
	case len(rt.singles) > 0:
		rc, err = rt.routeSingle()
	default:
		rc = rt.routeBroadcast()
	}
	if err != nil {
		return nil, err
	}
	rt.advance(StageRouted)
	log.DebugfWithLogType(log.RouteLog, "route units: %s", rc)

	if !shortcut && len(rt.shardings) > 0 {
		if err = rt.validate(scs, rc); err != nil {
			return nil, err
		}
	}
	rt.advance(StageValidated)

	return rc, nil
}

func (rt *routing) resolveTables() error {
	rt.tables = ast.TableNames(rt.stmt)

	if di, ok := rt.stmt.(*ast.DropIndexStatement); ok && di.Table == nil {
		for _, idx := range di.Indexes {
			var (
				table string
				found bool
			)
			if rt.metadata != nil {
				table, found = rt.metadata.FindTableByIndex(idx.Name)
			}
			if !found {
				return errors.Wrapf(ErrTableNotFound, "cannot find the table of index '%s'", idx.Name)
			}
			rt.tables = appendDistinct(rt.tables, table)
		}
	}

	rt.order = make(map[string]int, len(rt.tables))
	for i, it := range rt.tables {
		rt.order[it] = i
		switch {
		case rt.rule.IsShardingTable(it):
			rt.shardings = append(rt.shardings, it)
		case rt.rule.IsBroadcastTable(it):
			rt.broadcasts = append(rt.broadcasts, it)
		default:
			rt.singles = append(rt.singles, it)
		}
	}

	return nil
}

// isSingleDataSource returns true if the rows of all tables can only live in one place.
func (rt *routing) isSingleDataSource() bool {
	if len(rt.rule.DataSourceNames()) != 1 {
		return false
	}
	for _, it := range rt.shardings {
		if tr, _ := rt.rule.TableRule(it); tr.NeedsRename() {
			return false
		}
	}
	return true
}

func (rt *routing) routeBroadcast() *RouteContext {
	rc := &RouteContext{}
	for _, ds := range rt.rule.DataSourceNames() {
		rc.Units = append(rc.Units, &RouteUnit{
			DataSource: RouteMapper{Logical: ds, Actual: ds},
			Tables:     identityMappers(rt.broadcasts),
		})
	}
	return rc
}

func (rt *routing) routeSharding(scs *condition.ShardingConditions) (*RouteContext, error) {
	groups := rt.routeGroups()

	if rt.stmt.Mode() == ast.SQLTypeInsert && len(groups) == 1 && len(groups[0]) == 1 {
		tr, _ := rt.rule.TableRule(groups[0][0])
		return rt.routeInsert(tr, scs)
	}

	routed := make([][]*RouteUnit, 0, len(groups))
	for _, group := range groups {
		units, err := rt.routeGroup(group, scs)
		if err != nil {
			return nil, err
		}
		routed = append(routed, units)
	}

	rc := &RouteContext{Units: routed[0]}
	if len(routed) > 1 {
		units, err := rt.cartesian(routed)
		if err != nil {
			return nil, err
		}
		rc.Units = units
	}

	for _, it := range rc.Units {
		it.Tables = append(it.Tables, identityMappers(rt.broadcasts)...)
	}

	if len(rt.singles) > 0 {
		if err := rt.attachSingles(rc); err != nil {
			return nil, err
		}
	}

	for _, it := range rc.Units {
		rt.sortMappers(it)
	}

	return rc, nil
}

// routeGroups groups the sharding tables which must be routed together, ordered by appearance.
func (rt *routing) routeGroups() [][]string {
	var (
		ret   [][]string
		index = make(map[*rule.BindingGroup]int)
	)
	for _, it := range rt.shardings {
		bg, ok := rt.rule.BindingGroup(it)
		if !ok {
			ret = append(ret, []string{it})
			continue
		}
		if i, ok := index[bg]; ok {
			ret[i] = append(ret[i], it)
			continue
		}
		index[bg] = len(ret)
		ret = append(ret, []string{it})
	}
	return ret
}

// routeGroup routes a sharding table, or several tables of one binding group.
// The representative of a binding group decides the shards with the values of every member,
// the others follow it.
func (rt *routing) routeGroup(tables []string, scs *condition.ShardingConditions) ([]*RouteUnit, error) {
	rep := tables[0]
	groupScs := scs
	if bg, ok := rt.rule.BindingGroup(rep); ok && len(tables) > 1 {
		rep, _ = bg.Representative(tables)
		groupScs = condition.Retarget(scs, rep, tables, rt.rule)
	}

	tr, _ := rt.rule.TableRule(rep)
	shards, err := rt.routeTable(tr, groupScs)
	if err != nil {
		return nil, err
	}

	if len(tables) > 1 && log.IsDebugEnabled(log.RouteLog) {
		rt.compareBindings(rep, tables, scs, shards)
	}

	var units []*RouteUnit
	shards.Each(func(db, tb uint32) bool {
		node, _ := tr.Node(db, tb)
		unit := &RouteUnit{
			DataSource: RouteMapper{Logical: node.DataSource, Actual: node.DataSource},
			Tables:     make([]RouteMapper, 0, len(tables)),
		}
		for _, it := range tables {
			if it == rep {
				unit.Tables = append(unit.Tables, RouteMapper{Logical: it, Actual: node.Table})
				continue
			}
			actual, e := rt.rule.BindingActualTable(node.DataSource, it, rep, node.Table)
			if e != nil {
				err = e
				return false
			}
			unit.Tables = append(unit.Tables, RouteMapper{Logical: it, Actual: actual})
		}
		units = append(units, unit)
		return true
	})
	if err != nil {
		return nil, err
	}

	return units, nil
}

// compareBindings logs the bound tables whose own conditions disagree with the representative.
func (rt *routing) compareBindings(rep string, tables []string, scs *condition.ShardingConditions, shards *rule.Shards) {
	for _, it := range tables {
		if it == rep {
			continue
		}
		tr, _ := rt.rule.TableRule(it)
		own, err := rt.routeTable(tr, scs)
		if err != nil || own.String() != shards.String() {
			log.DebugfWithLogType(log.RouteLog, "binding table '%s' follows '%s': own shards %s, used %s", it, rep, own, shards)
		}
	}
}

// routeTable returns the shards of the table which satisfy any of the conditions.
func (rt *routing) routeTable(tr *rule.TableRule, scs *condition.ShardingConditions) (*rule.Shards, error) {
	if scs.IsAlwaysFalse() {
		return firstShard(), nil
	}

	var ret *rule.Shards
	if scs.IsEmpty() {
		shards, err := rt.routeCondition(tr, nil)
		if err != nil {
			return nil, err
		}
		ret = shards
	} else {
		ret = rule.NewShards()
		for _, sc := range scs.Conditions {
			if sc.AlwaysFalse {
				continue
			}
			shards, err := rt.routeCondition(tr, sc)
			if err != nil {
				return nil, err
			}
			ret = rule.UnionShards(ret, shards)
		}
	}

	if ret.Len() == 0 {
		log.DebugfWithLogType(log.RouteLog, "no shard matched for table '%s', use the first one", tr.LogicTable())
		return firstShard(), nil
	}

	if !isConstrained(scs, tr.LogicTable()) && ret.Len() > 1 && ret.Len() == len(tr.DataNodes()) && rt.isFullScanDenied() {
		return nil, errors.Wrapf(ErrDenyFullScan, "%s on table '%s' without sharding condition", rt.stmt.Mode(), tr.LogicTable())
	}

	return ret, nil
}

// isConstrained returns true if any condition holds a value of the table.
func isConstrained(scs *condition.ShardingConditions, table string) bool {
	if scs.IsEmpty() {
		return false
	}
	for _, it := range scs.Conditions {
		if it.HasTable(table) {
			return true
		}
	}
	return false
}

func (rt *routing) isFullScanDenied() bool {
	return rt.rule.Props().DenyFullScan && rt.stmt.Mode().IsDML() && !rcontext.IsFullScanAllowed(rt.ctx)
}

// routeCondition evaluates the database axis, then the table axis on every matched data source.
func (rt *routing) routeCondition(tr *rule.TableRule, sc *condition.ShardingCondition) (*rule.Shards, error) {
	table := tr.LogicTable()
	dataSources, err := evaluate(rt.ctx, rt.rule.DatabaseStrategy(tr), axisDatabase, table, tr.DataSources(), sc)
	if err != nil {
		return nil, err
	}

	ret := rule.NewShards()
	for _, ds := range dataSources {
		tables, err := evaluate(rt.ctx, rt.rule.TableStrategy(tr), axisTable, table, tr.ActualTables(ds), sc)
		if err != nil {
			return nil, err
		}
		for _, it := range tables {
			db, tb, ok := tr.Position(rule.DataNode{DataSource: ds, Table: it})
			if !ok {
				return nil, errors.Wrapf(ErrTargetNotFound, "no data node %s.%s for table '%s'", ds, it, table)
			}
			ret.Add(db, tb)
		}
	}
	return ret, nil
}

// routeInsert routes each value group to exactly one data node.
func (rt *routing) routeInsert(tr *rule.TableRule, scs *condition.ShardingConditions) (*RouteContext, error) {
	var (
		rc     = &RouteContext{OriginalDataNodes: make([][]rule.DataNode, len(scs.Conditions))}
		shards = rule.NewShards()
	)
	for i, sc := range scs.Conditions {
		s, err := rt.routeCondition(tr, sc)
		if err != nil {
			return nil, err
		}
		if s.Len() != 1 {
			return nil, errors.Wrapf(ErrInsertMultiNodes, "value group #%d of table '%s' is routed to %d data nodes", i, tr.LogicTable(), s.Len())
		}
		db, tb, _ := s.Min()
		node, _ := tr.Node(db, tb)
		rc.OriginalDataNodes[i] = []rule.DataNode{node}
		shards.Add(db, tb)
	}

	shards.Each(func(db, tb uint32) bool {
		node, _ := tr.Node(db, tb)
		rc.Units = append(rc.Units, &RouteUnit{
			DataSource: RouteMapper{Logical: node.DataSource, Actual: node.DataSource},
			Tables:     []RouteMapper{{Logical: tr.LogicTable(), Actual: node.Table}},
		})
		return true
	})

	return rc, nil
}

// cartesian combines the units of independent tables on the same data source.
func (rt *routing) cartesian(routed [][]*RouteUnit) ([]*RouteUnit, error) {
	var ret []*RouteUnit
	for _, ds := range rt.rule.DataSourceNames() {
		combos := [][]RouteMapper{nil}
		for _, units := range routed {
			var next [][]RouteMapper
			for _, unit := range units {
				if unit.DataSource.Actual != ds {
					continue
				}
				for _, prefix := range combos {
					combo := make([]RouteMapper, 0, len(prefix)+len(unit.Tables))
					combo = append(combo, prefix...)
					combo = append(combo, unit.Tables...)
					next = append(next, combo)
				}
			}
			combos = next
			if len(combos) == 0 {
				break
			}
		}
		for _, it := range combos {
			ret = append(ret, &RouteUnit{
				DataSource: RouteMapper{Logical: ds, Actual: ds},
				Tables:     it,
			})
		}
	}

	if len(ret) == 0 {
		return nil, errors.Wrapf(ErrUnsupportedMultiTable, "tables %v share no data source", rt.shardings)
	}
	return ret, nil
}

func (rt *routing) sortMappers(u *RouteUnit) {
	sort.SliceStable(u.Tables, func(i, j int) bool {
		return rt.order[u.Tables[i].Logical] < rt.order[u.Tables[j].Logical]
	})
}

func firstShard() *rule.Shards {
	ret := rule.NewShards()
	ret.Add(0, 0)
	return ret
}

func identityMappers(tables []string) []RouteMapper {
	ret := make([]RouteMapper, 0, len(tables))
	for _, it := range tables {
		ret = append(ret, RouteMapper{Logical: it, Actual: it})
	}
	return ret
}

func appendDistinct(dst []string, s string) []string {
	for _, it := range dst {
		if it == s {
			return dst
		}
	}
	return append(dst, s)
}

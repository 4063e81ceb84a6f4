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
	"testing"
)

import (
	"github.com/golang/mock/gomock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/hint"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	rcontext "github.com/arana-db/sharding-core/pkg/runtime/context"
	"github.com/arana-db/sharding-core/testdata"
)

func col(table, name string) *ast.ColumnExpr {
	return &ast.ColumnExpr{Column: &ast.ColumnSegment{Name: name, Table: table}}
}

func lit(v interface{}) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: v}
}

func param(i int) *ast.ParamExpr {
	return &ast.ParamExpr{Index: i}
}

func eq(l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: ast.OpEq, Left: l, Right: r}
}

func and(exprs ...ast.Expr) ast.Expr {
	ret := exprs[0]
	for _, it := range exprs[1:] {
		ret = &ast.BinaryExpr{Op: ast.OpAnd, Left: ret, Right: it}
	}
	return ret
}

func tables(names ...string) []*ast.TableSegment {
	ret := make([]*ast.TableSegment, 0, len(names))
	for _, it := range names {
		ret = append(ret, &ast.TableSegment{Name: it})
	}
	return ret
}

func selectFrom(where ast.Expr, names ...string) *ast.SelectStatement {
	return &ast.SelectStatement{From: tables(names...), Where: where}
}

func assign(table, column string, value ast.Expr) *ast.Assignment {
	return &ast.Assignment{Column: &ast.ColumnSegment{Name: column, Table: table}, Value: value}
}

func insertOrder(groups [][]ast.Expr, onDuplicate ...*ast.Assignment) *ast.InsertStatement {
	stmt := &ast.InsertStatement{
		Table: &ast.TableSegment{Name: "t_order"},
		Columns: []*ast.ColumnSegment{
			{Name: "user_id", Table: "t_order"},
			{Name: "order_id", Table: "t_order"},
		},
		OnDuplicate: onDuplicate,
	}
	for _, it := range groups {
		stmt.Values = append(stmt.Values, &ast.InsertValues{Values: it})
	}
	return stmt
}

func newRouter(ru *rule.ShardingRule) *Router {
	return NewRouter(ru, testdata.NewCatalog())
}

func TestRoute_SimpleOrder(t *testing.T) {
	router := newRouter(testdata.NewSimpleOrderRule())

	rc, err := router.Route(context.Background(), selectFrom(eq(col("t_order", "user_id"), lit(11)), "t_order"), nil)
	require.NoError(t, err)
	require.Len(t, rc.Units, 1)
	assert.Equal(t, RouteMapper{Logical: "ds_0", Actual: "ds_0"}, rc.Units[0].DataSource)
	assert.Equal(t, "t_order_1", rc.Units[0].ActualTable("t_order"))
	assert.True(t, rc.IsSingleRouting())

	rc, err = router.Route(context.Background(), selectFrom(eq(col("t_order", "user_id"), param(0)), "t_order"), []interface{}{int64(20)})
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order->t_order_0]", rc.String())
}

func TestRoute_UpdateShardingKey(t *testing.T) {
	router := newRouter(testdata.NewSimpleOrderRule())

	update := func(set ast.Expr, where ast.Expr) *ast.UpdateStatement {
		return &ast.UpdateStatement{
			Targets: tables("t_order"),
			Set:     []*ast.Assignment{assign("t_order", "user_id", set)},
			Where:   where,
		}
	}

	_, err := router.Route(context.Background(), update(lit(12), eq(col("t_order", "user_id"), lit(11))), nil)
	assert.True(t, IsShardingKeyUpdatedErr(err))

	_, err = router.Route(context.Background(), update(lit(13), eq(col("t_order", "user_id"), lit(11))), nil)
	assert.NoError(t, err, "same shard is not a move")

	_, err = router.Route(context.Background(), update(param(0), eq(col("t_order", "user_id"), param(1))), []interface{}{12, 11})
	assert.True(t, IsShardingKeyUpdatedErr(err))

	// out of range parameter is not extractable, so no move can be detected
	_, err = router.Route(context.Background(), update(param(5), eq(col("t_order", "user_id"), lit(11))), nil)
	assert.NoError(t, err)

	stmt := &ast.UpdateStatement{
		Targets: tables("t_order"),
		Set:     []*ast.Assignment{assign("t_order", "status", lit(1))},
		Where:   eq(col("t_order", "user_id"), lit(11)),
	}
	_, err = router.Route(context.Background(), stmt, nil)
	assert.NoError(t, err)
}

func TestRoute_UpdateShardingKey_PartialKeys(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	// SET user_id keeps order_id of WHERE
	stmt := &ast.UpdateStatement{
		Targets: tables("t_order"),
		Set:     []*ast.Assignment{assign("t_order", "user_id", lit(3))},
		Where:   and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order", "order_id"), lit(2))),
	}
	_, err := router.Route(context.Background(), stmt, nil)
	assert.NoError(t, err)

	stmt.Set[0].Value = lit(4)
	_, err = router.Route(context.Background(), stmt, nil)
	assert.True(t, IsShardingKeyUpdatedErr(err))

	// a sharding key assigned without WHERE moves rows of every shard
	stmt.Where = nil
	_, err = router.Route(context.Background(), stmt, nil)
	assert.True(t, IsShardingKeyUpdatedErr(err))
}

func TestRoute_FullScan(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	rc, err := router.Route(context.Background(), selectFrom(nil, "t_order"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order->t_order_0]; ds_0[t_order->t_order_1]; ds_1[t_order->t_order_0]; ds_1[t_order->t_order_1]", rc.String())
	assert.Equal(t, []string{"ds_0", "ds_1"}, rc.DataSources())

	// database axis only
	rc, err = router.Route(context.Background(), selectFrom(eq(col("t_order", "user_id"), lit(3)), "t_order"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_order->t_order_0]; ds_1[t_order->t_order_1]", rc.String())

	// the table axis of a non-sharding condition
	rc, err = router.Route(context.Background(), selectFrom(eq(col("t_order", "status"), lit(3)), "t_order"), nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)
}

func TestRoute_DenyFullScan(t *testing.T) {
	router := newRouter(testdata.NewOrderRule(rule.WithProps(rule.Props{DenyFullScan: true})))

	del := &ast.DeleteStatement{Targets: tables("t_order")}
	_, err := router.Route(context.Background(), del, nil)
	assert.True(t, IsDenyFullScanErr(err))

	fullScan, err := hint.Parse("fullscan")
	require.NoError(t, err)
	rc, err := router.Route(rcontext.WithHints(context.Background(), []*hint.Hint{fullScan}), del, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)

	rc, err = router.Route(context.Background(), selectFrom(nil, "t_order"), nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)

	rc, err = router.Route(context.Background(), &ast.DeleteStatement{
		Targets: tables("t_order"),
		Where:   eq(col("t_order", "user_id"), lit(1)),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 2)
}

func TestRoute_Conditions(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	type tt struct {
		name   string
		where  ast.Expr
		expect string
	}

	for _, it := range []tt{
		{
			"Precise",
			and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order", "order_id"), lit(2))),
			"ds_1[t_order->t_order_0]",
		},
		{
			"In",
			and(
				eq(col("t_order", "user_id"), lit(1)),
				&ast.InExpr{Left: col("t_order", "order_id"), Values: []ast.Expr{lit(5), lit(2), lit(7)}},
			),
			"ds_1[t_order->t_order_0]; ds_1[t_order->t_order_1]",
		},
		{
			"Or",
			&ast.BinaryExpr{
				Op:    ast.OpOr,
				Left:  and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order", "order_id"), lit(1))),
				Right: and(eq(col("t_order", "user_id"), lit(2)), eq(col("t_order", "order_id"), lit(2))),
			},
			"ds_0[t_order->t_order_0]; ds_1[t_order->t_order_1]",
		},
		{
			"Between",
			and(
				eq(col("t_order", "user_id"), lit(2)),
				&ast.BetweenExpr{Left: col("t_order", "order_id"), Lower: lit(4), Upper: lit(4)},
			),
			"ds_0[t_order->t_order_0]",
		},
		{
			"AlwaysFalse",
			and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order", "user_id"), lit(2))),
			"ds_0[t_order->t_order_0]",
		},
	} {
		t.Run(it.name, func(t *testing.T) {
			rc, err := router.Route(context.Background(), selectFrom(it.where, "t_order"), nil)
			require.NoError(t, err)
			assert.Equal(t, it.expect, rc.String())
		})
	}
}

func TestRoute_Binding(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	stmt := &ast.SelectStatement{
		From: tables("t_order", "t_order_item"),
		On:   []ast.Expr{eq(col("t_order", "order_id"), col("t_order_item", "order_id"))},
		Where: and(
			eq(col("t_order", "user_id"), lit(1)),
			&ast.InExpr{Left: col("t_order", "order_id"), Values: []ast.Expr{lit(2), lit(3)}},
		),
	}
	rc, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_order->t_order_0,t_order_item->t_order_item_0]; "+
		"ds_1[t_order->t_order_1,t_order_item->t_order_item_1]", rc.String())

	// the representative decides, mappers follow the order of appearance
	stmt = &ast.SelectStatement{
		From:  tables("t_order_item", "t_order"),
		Where: and(eq(col("t_order", "user_id"), lit(2)), eq(col("t_order", "order_id"), lit(5))),
	}
	rc, err = router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order_item->t_order_item_1,t_order->t_order_1]", rc.String())

	for _, unit := range rc.Units {
		order, _ := unit.FindTable("t_order")
		item, _ := unit.FindTable("t_order_item")
		assert.Equal(t, order.Actual[len(order.Actual)-1], item.Actual[len(item.Actual)-1])
	}
}

func TestRoute_BindingMemberConditions(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	type tt struct {
		name   string
		where  ast.Expr
		expect string
	}

	for _, it := range []tt{
		{
			"MemberOnly",
			and(eq(col("t_order_item", "user_id"), lit(1)), eq(col("t_order_item", "order_id"), lit(1))),
			"ds_1[t_order->t_order_1,t_order_item->t_order_item_1]",
		},
		{
			"Mixed",
			and(eq(col("t_order", "user_id"), lit(2)), eq(col("t_order_item", "order_id"), lit(3))),
			"ds_0[t_order->t_order_1,t_order_item->t_order_item_1]",
		},
		{
			"Intersected",
			and(
				&ast.InExpr{Left: col("t_order", "order_id"), Values: []ast.Expr{lit(2), lit(3)}},
				eq(col("t_order_item", "order_id"), lit(3)),
				eq(col("t_order_item", "user_id"), lit(1)),
			),
			"ds_1[t_order->t_order_1,t_order_item->t_order_item_1]",
		},
		{
			"Contradicted",
			and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order_item", "user_id"), lit(2))),
			"ds_0[t_order->t_order_0,t_order_item->t_order_item_0]",
		},
	} {
		t.Run(it.name, func(t *testing.T) {
			rc, err := router.Route(context.Background(), selectFrom(it.where, "t_order", "t_order_item"), nil)
			require.NoError(t, err)
			assert.Equal(t, it.expect, rc.String())
		})
	}

	deny := newRouter(testdata.NewOrderRule(rule.WithProps(rule.Props{DenyFullScan: true})))
	rc, err := deny.Route(context.Background(), &ast.DeleteStatement{
		Targets: tables("t_order", "t_order_item"),
		Where:   and(eq(col("t_order_item", "user_id"), lit(1)), eq(col("t_order_item", "order_id"), lit(1))),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_order->t_order_1,t_order_item->t_order_item_1]", rc.String())

	_, err = deny.Route(context.Background(), &ast.DeleteStatement{
		Targets: tables("t_order", "t_order_item"),
		Where:   eq(col("t_user", "user_id"), lit(1)),
	}, nil)
	assert.True(t, IsDenyFullScanErr(err))
}

func TestRoute_Broadcast(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	for _, stmt := range []ast.Statement{
		selectFrom(nil, "t_dict"),
		&ast.UpdateStatement{Targets: tables("t_dict"), Set: []*ast.Assignment{assign("t_dict", "name", lit("x"))}},
		&ast.TruncateStatement{Table: &ast.TableSegment{Name: "t_dict"}},
	} {
		rc, err := router.Route(context.Background(), stmt, nil)
		require.NoError(t, err)
		require.Len(t, rc.Units, 2)
		for i, unit := range rc.Units {
			assert.Equal(t, router.Rule().DataSourceNames()[i], unit.DataSource.Actual)
			assert.Equal(t, []RouteMapper{{Logical: "t_dict", Actual: "t_dict"}}, unit.Tables)
		}
	}

	// join with a sharding table
	stmt := selectFrom(and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_order", "order_id"), lit(1))), "t_dict", "t_order")
	rc, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_dict,t_order->t_order_1]", rc.String())
}

func TestRoute_Single(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	rc, err := router.Route(context.Background(), selectFrom(nil, "t_config", "t_dict"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_config,t_dict]", rc.String())

	_, err = router.Route(context.Background(), selectFrom(nil, "t_config", "t_audit"), nil)
	assert.True(t, IsSingleTableCrossDataSourceErr(err))

	_, err = router.Route(context.Background(), selectFrom(nil, "t_missing"), nil)
	assert.True(t, IsTableNotFoundErr(err))

	federated := newRouter(testdata.NewOrderRule(rule.WithProps(rule.Props{SQLFederationEnabled: true})))
	rc, err = federated.Route(context.Background(), selectFrom(nil, "t_config", "t_audit"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_config]; ds_1[t_audit]", rc.String())

	// federation is for queries only
	_, err = federated.Route(context.Background(), &ast.DeleteStatement{Targets: tables("t_config", "t_audit")}, nil)
	assert.True(t, IsSingleTableCrossDataSourceErr(err))
}

func TestRoute_ShardingWithSingle(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	rc, err := router.Route(context.Background(), selectFrom(eq(col("t_order", "user_id"), lit(0)), "t_order", "t_config"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order->t_order_0,t_config]; ds_0[t_order->t_order_1,t_config]", rc.String())

	_, err = router.Route(context.Background(), selectFrom(eq(col("t_order", "user_id"), lit(1)), "t_order", "t_config"), nil)
	assert.True(t, IsSingleTableCrossDataSourceErr(err))

	federated := newRouter(testdata.NewOrderRule(rule.WithProps(rule.Props{SQLFederationEnabled: true})))
	rc, err = federated.Route(context.Background(), selectFrom(nil, "t_order", "t_audit"), nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)
	assert.Equal(t, "ds_0[t_order->t_order_0]", rc.Units[0].String())
	assert.Equal(t, "ds_1[t_order->t_order_0,t_audit]", rc.Units[2].String())
}

func TestRoute_Cartesian(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	stmt := selectFrom(nil, "t_order", "t_user")
	rc, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order->t_order_0,t_user]; ds_0[t_order->t_order_1,t_user]; "+
		"ds_1[t_order->t_order_0,t_user]; ds_1[t_order->t_order_1,t_user]", rc.String())

	stmt = selectFrom(and(
		eq(col("t_order", "user_id"), lit(1)),
		eq(col("t_order", "order_id"), lit(1)),
		eq(col("t_user", "user_id"), lit(1)),
	), "t_order", "t_user")
	rc, err = router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_order->t_order_1,t_user]", rc.String())

	stmt = selectFrom(and(eq(col("t_order", "user_id"), lit(1)), eq(col("t_user", "user_id"), lit(2))), "t_order", "t_user")
	_, err = router.Route(context.Background(), stmt, nil)
	assert.True(t, IsUnsupportedMultiTableErr(err))
}

func TestRoute_MultiTableDML(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	type tt struct {
		name   string
		tables []string
		ok     bool
	}

	for _, it := range []tt{
		{"Bound", []string{"t_order", "t_order_item"}, true},
		{"NotBound", []string{"t_order", "t_user"}, false},
		{"ShardingAndBroadcast", []string{"t_order", "t_dict"}, false},
		{"ShardingAndSingle", []string{"t_order", "t_config"}, false},
		{"BroadcastAndSingle", []string{"t_dict", "t_config"}, false},
	} {
		t.Run(it.name, func(t *testing.T) {
			_, err := router.Route(context.Background(), &ast.DeleteStatement{Targets: tables(it.tables...)}, nil)
			if it.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsUnsupportedMultiTableErr(err))
			}
		})
	}
}

func TestRoute_Insert(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	stmt := insertOrder([][]ast.Expr{
		{lit(1), lit(1)},
		{param(0), param(1)},
		{lit(1), lit(3)},
	})
	rc, err := router.Route(context.Background(), stmt, []interface{}{2, 2})
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_order->t_order_0]; ds_1[t_order->t_order_1]", rc.String())
	assert.Equal(t, [][]rule.DataNode{
		{{DataSource: "ds_1", Table: "t_order_1"}},
		{{DataSource: "ds_0", Table: "t_order_0"}},
		{{DataSource: "ds_1", Table: "t_order_1"}},
	}, rc.OriginalDataNodes)

	// the group without order_id goes to every table of ds_1
	_, err = router.Route(context.Background(), insertOrder([][]ast.Expr{{lit(1), lit(1)}, {lit(1), lit(nil)}}), nil)
	assert.True(t, IsInsertMultiNodesErr(err))
}

func TestRoute_InsertOnDuplicate(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())
	groups := [][]ast.Expr{{lit(1), lit(1)}, {lit(1), lit(3)}}

	values := &ast.FuncExpr{Name: "values", Args: []ast.Expr{col("t_order", "user_id")}}
	_, err := router.Route(context.Background(), insertOrder(groups, assign("t_order", "user_id", values)), nil)
	assert.NoError(t, err)

	_, err = router.Route(context.Background(), insertOrder(groups, assign("t_order", "status", lit(2))), nil)
	assert.NoError(t, err)

	_, err = router.Route(context.Background(), insertOrder(groups, assign("t_order", "user_id", lit(1))), nil)
	assert.NoError(t, err)

	_, err = router.Route(context.Background(), insertOrder(groups, assign("t_order", "user_id", lit(2))), nil)
	assert.True(t, IsShardingKeyUpdatedErr(err))

	_, err = router.Route(context.Background(), insertOrder(groups, assign("t_order", "order_id", lit(1))), nil)
	assert.True(t, IsShardingKeyUpdatedErr(err))
}

func TestRoute_Hint(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())
	stmt := selectFrom(eq(col("t_log", "id"), lit(1)), "t_log")

	rc, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)

	db, err := hint.Parse("sharding_db(t_log=3)")
	require.NoError(t, err)
	tb, err := hint.Parse("sharding_table(2)")
	require.NoError(t, err)

	ctx := rcontext.WithHints(context.Background(), []*hint.Hint{db, tb})
	rc, err = router.Route(ctx, stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_log->t_log_0]", rc.String())

	var values hint.Values
	values.AddDatabaseValue("t_log", 0)
	rc, err = router.Route(rcontext.WithHintValues(context.Background(), &values), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_log->t_log_0]; ds_0[t_log->t_log_1]", rc.String())

	values.AddDatabaseValue("t_log", 5)
	values.AddTableValue("t_log", 7)
	values.AddTableValue("t_log", 9)
	rc, err = router.Route(rcontext.WithHintValues(context.Background(), &values), stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_log->t_log_1]; ds_1[t_log->t_log_1]", rc.String())
}

func TestRoute_SingleDataSource(t *testing.T) {
	order, err := rule.NewTableRule("t_order", []rule.DataNode{{DataSource: "ds_0", Table: "t_order"}})
	require.NoError(t, err)
	ru, err := rule.NewShardingRule("employees", []string{"ds_0"}, rule.WithTableRule(order))
	require.NoError(t, err)

	router := NewRouter(ru, nil)
	for _, stmt := range []ast.Statement{
		selectFrom(nil, "t_order"),
		selectFrom(nil, "t_whatever"),
		&ast.SelectStatement{Projections: []ast.Expr{lit(1)}},
		insertOrder([][]ast.Expr{{lit(1), lit(1)}, {lit(2), lit(2)}}),
	} {
		rc, err := router.Route(context.Background(), stmt, nil)
		require.NoError(t, err)
		require.Len(t, rc.Units, 1)
		assert.Equal(t, RouteMapper{Logical: "employees", Actual: "ds_0"}, rc.Units[0].DataSource)
		assert.Empty(t, rc.Units[0].Tables)
		assert.Empty(t, rc.OriginalDataNodes)
	}
}

func TestRoute_Tableless(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	rc, err := router.Route(context.Background(), &ast.SelectStatement{Projections: []ast.Expr{lit(1)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "employees->ds_0[]", rc.String())

	_, err = router.Route(context.Background(), &ast.DropTableStatement{}, nil)
	assert.True(t, IsTableNotFoundErr(err))

	_, err = router.Route(context.Background(), nil, nil)
	assert.True(t, ast.IsUnknownStatementErr(err))
}

func TestRoute_DDL(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())

	rc, err := router.Route(context.Background(), &ast.CreateTableStatement{Table: &ast.TableSegment{Name: "t_order"}}, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)

	rc, err = router.Route(context.Background(), &ast.DropIndexStatement{
		Indexes: []*ast.IndexSegment{{Name: "idx_order_user"}},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)
	assert.Equal(t, "t_order_1", rc.Units[3].ActualTable("t_order"))

	rc, err = router.Route(context.Background(), &ast.DropIndexStatement{
		Indexes: []*ast.IndexSegment{{Name: "idx_config_name"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_config]", rc.String())

	_, err = router.Route(context.Background(), &ast.DropIndexStatement{
		Indexes: []*ast.IndexSegment{{Name: "idx_missing"}},
	}, nil)
	assert.True(t, IsTableNotFoundErr(err))

	_, err = router.Route(context.Background(), &ast.DropTableStatement{Targets: tables("t_order", "t_user")}, nil)
	assert.True(t, IsUnsupportedMultiTableErr(err))

	rc, err = router.Route(context.Background(), &ast.DropTableStatement{Targets: tables("t_order", "t_order_item")}, nil)
	require.NoError(t, err)
	assert.Len(t, rc.Units, 4)

	create := &ast.CreateTableStatement{Table: &ast.TableSegment{Name: "t_new"}}
	rc, err = router.Route(context.Background(), create, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_0[t_new]; ds_1[t_new]", rc.String())

	withDefault := newRouter(testdata.NewOrderRule(rule.WithProps(rule.Props{DefaultSingleDataSource: "ds_1"})))
	rc, err = withDefault.Route(context.Background(), create, nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_new]", rc.String())
}

func TestRoute_MockMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	md := testdata.NewMockMetadata(ctrl)
	md.EXPECT().FindSingleTable("t_remote").Return("ds_1", true).Times(1)

	router := NewRouter(testdata.NewOrderRule(), md)
	rc, err := router.Route(context.Background(), selectFrom(nil, "t_remote"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ds_1[t_remote]", rc.String())
}

func TestRoute_Deterministic(t *testing.T) {
	router := newRouter(testdata.NewOrderRule())
	stmt := &ast.SelectStatement{
		From: tables("t_order", "t_order_item", "t_dict"),
		Where: &ast.InExpr{
			Left:   col("t_order", "user_id"),
			Values: []ast.Expr{lit(3), lit(1), lit(2), lit(3)},
		},
	}

	a, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	b, err := router.Route(context.Background(), stmt, nil)
	require.NoError(t, err)
	assert.True(t, IsSameRouteContext(a, b))
	assert.Len(t, a.Units, 4)
}

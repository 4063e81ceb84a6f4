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

package algorithm

import (
	"fmt"
	"math"
	"testing"
	"time"
)

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

var _tables7 = []string{"t_0", "t_1", "t_2", "t_3", "t_4", "t_5", "t_6"}

func newBuiltinRegistry(t *testing.T) *Registry {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r))
	return r
}

func TestRegistry(t *testing.T) {
	r := newBuiltinRegistry(t)
	defer func() {
		assert.NoError(t, r.Close())
	}()

	assert.Equal(t, []string{
		TypeBoundaryRange, TypeComplexInline, TypeHashMod, TypeHintInline, TypeInline, TypeMod,
	}, r.Types())

	assert.Error(t, r.Register("mod", NewMod))
	assert.Error(t, r.Register("", NewMod))

	_, err := r.New("unknown", nil)
	assert.True(t, IsUnknownAlgorithmErr(err))

	_, err = r.New("mod", Props{PropShardingCount: "0"})
	assert.Error(t, err)
	_, err = r.New("mod", Props{PropShardingCount: "x"})
	assert.Error(t, err)

	a, err := r.New("Mod", Props{PropShardingCount: "2"})
	assert.NoError(t, err)
	assert.Equal(t, TypeMod, a.Type())
}

func TestMod(t *testing.T) {
	a, err := NewMod(Props{PropShardingCount: "7"})
	require.NoError(t, err)
	m := a.(rule.StandardAlgorithm)

	type tt struct {
		in   interface{}
		want string
	}

	for _, it := range []tt{
		{-1, "t_1"},
		{3, "t_3"},
		{int64(13), "t_6"},
		{"14", "t_0"},
		{float64(15), "t_1"},
	} {
		t.Run(fmt.Sprint(it.in), func(t *testing.T) {
			actual, err := m.DoSharding(_tables7, rule.PreciseValue{Table: "t", Column: "id", Value: it.in})
			assert.NoError(t, err)
			assert.Equal(t, it.want, actual)
		})
	}

	_, err = m.DoSharding(_tables7, rule.PreciseValue{Value: "abc"})
	assert.Error(t, err)
	_, err = m.DoSharding([]string{"t_0"}, rule.PreciseValue{Value: 3})
	assert.Error(t, err)

	r := a.(rule.RangeAlgorithm)
	res, err := r.DoRangeSharding(_tables7, rule.RangeShardingValue{Range: rule.Closed(5, 8)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t_5", "t_6", "t_0", "t_1"}, res)

	res, err = r.DoRangeSharding(_tables7, rule.RangeShardingValue{Range: rule.AtLeast(5, true)})
	assert.NoError(t, err)
	assert.Equal(t, _tables7, res)

	res, err = r.DoRangeSharding(_tables7, rule.RangeShardingValue{Range: rule.Closed(0, 100)})
	assert.NoError(t, err)
	assert.Equal(t, _tables7, res)
}

func TestMod_ExtremeValues(t *testing.T) {
	a, err := NewMod(Props{PropShardingCount: "4"})
	require.NoError(t, err)
	m := a.(*modAlgorithm)
	tables := []string{"t_0", "t_1", "t_2", "t_3"}

	res, err := m.DoSharding(tables, rule.PreciseValue{Value: int64(math.MinInt64)})
	assert.NoError(t, err)
	assert.Equal(t, "t_0", res)

	for _, it := range []struct {
		name   string
		vr     rule.ValueRange
		expect []string
	}{
		{"MaxUpper", rule.Closed(int64(math.MaxInt64-1), int64(math.MaxInt64)), []string{"t_2", "t_3"}},
		{"MinLower", rule.Closed(int64(math.MinInt64), int64(math.MinInt64+1)), []string{"t_0", "t_3"}},
		{"OverflowSpan", rule.Closed(int64(-5e18), int64(5e18)), tables},
		{"FullSpan", rule.Closed(int64(math.MinInt64), int64(math.MaxInt64)), tables},
		{"ExclusiveMax", rule.ValueRange{
			Lower: &rule.Bound{Value: int64(math.MaxInt64), Inclusive: false},
			Upper: &rule.Bound{Value: int64(math.MaxInt64), Inclusive: true},
		}, tables},
		{"ExclusiveMin", rule.ValueRange{
			Lower: &rule.Bound{Value: int64(math.MinInt64), Inclusive: true},
			Upper: &rule.Bound{Value: int64(math.MinInt64), Inclusive: false},
		}, tables},
	} {
		t.Run(it.name, func(t *testing.T) {
			done := make(chan struct{})
			var (
				res []string
				err error
			)
			go func() {
				defer close(done)
				res, err = m.DoRangeSharding(tables, rule.RangeShardingValue{Range: it.vr})
			}()
			select {
			case <-done:
			case <-time.After(3 * time.Second):
				t.Fatal("range sharding does not terminate")
			}
			assert.NoError(t, err)
			assert.Equal(t, it.expect, res)
		})
	}
}

func TestHashMod(t *testing.T) {
	type tt struct {
		hash string
		in   string
		want string
	}

	for _, it := range []tt{
		{HashMd5, "1", "t_0"},
		{HashMd5, "abc", "t_4"},
		{HashMd5, "DZ20201212", "t_1"},
		{HashCrc32, "1", "t_2"},
		{HashCrc32, "abc", "t_5"},
		{HashCrc32, "DZ20201212", "t_3"},
		{HashBKDR, "1", "t_0"},
		{HashBKDR, "abc", "t_6"},
		{HashBKDR, "DZ20201212", "t_5"},
	} {
		t.Run(it.hash+"/"+it.in, func(t *testing.T) {
			a, err := NewHashMod(Props{PropShardingCount: "7", PropHash: it.hash})
			require.NoError(t, err)
			actual, err := a.(rule.StandardAlgorithm).DoSharding(_tables7, rule.PreciseValue{Value: it.in})
			assert.NoError(t, err)
			assert.Equal(t, it.want, actual)
		})
	}

	_, err := NewHashMod(Props{PropShardingCount: "7", PropHash: "sha1"})
	assert.Error(t, err)

	a, err := NewHashMod(Props{PropShardingCount: "7"})
	require.NoError(t, err)
	res, err := a.(rule.RangeAlgorithm).DoRangeSharding(_tables7, rule.RangeShardingValue{Range: rule.Closed(1, 2)})
	assert.NoError(t, err)
	assert.Equal(t, _tables7, res)
}

func TestBoundaryRange(t *testing.T) {
	targets := []string{"t_0", "t_1", "t_2", "t_3"}
	a, err := NewBoundaryRange(Props{PropShardingRanges: "10, 20, 30"})
	require.NoError(t, err)
	b := a.(*boundaryRangeAlgorithm)

	type tt struct {
		in   interface{}
		want string
	}
	for _, it := range []tt{
		{-5, "t_0"},
		{10, "t_1"},
		{"19", "t_1"},
		{20.5, "t_2"},
		{30, "t_3"},
		{int64(1000), "t_3"},
	} {
		actual, err := b.DoSharding(targets, rule.PreciseValue{Value: it.in})
		assert.NoError(t, err)
		assert.Equal(t, it.want, actual, "%v", it.in)
	}

	_, err = b.DoSharding(targets, rule.PreciseValue{Value: "abc"})
	assert.Error(t, err)

	res, err := b.DoRangeSharding(targets, rule.RangeShardingValue{Range: rule.Closed(15, 20)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t_1", "t_2"}, res)

	res, err = b.DoRangeSharding(targets, rule.RangeShardingValue{Range: rule.AtMost(20, false)})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t_0", "t_1"}, res)

	for _, it := range []string{"", "a,b", "20,10"} {
		_, err = NewBoundaryRange(Props{PropShardingRanges: it})
		assert.Error(t, err, it)
	}
}

func TestInline(t *testing.T) {
	a, err := NewInline(Props{PropAlgorithmExpression: "t_order_${user_id % 2}"})
	require.NoError(t, err)
	first := a.(*inlineAlgorithm)
	defer func() {
		_ = first.Close()
	}()

	_, ok := a.(rule.RangeAlgorithm)
	assert.False(t, ok)

	m := a.(rule.StandardAlgorithm)
	for _, it := range []struct {
		in   interface{}
		want string
	}{
		{11, "t_order_1"},
		{int64(12), "t_order_0"},
		{"13", "t_order_1"},
	} {
		actual, err := m.DoSharding(nil, rule.PreciseValue{Table: "t_order", Column: "user_id", Value: it.in})
		assert.NoError(t, err)
		assert.Equal(t, it.want, actual)
	}

	_, err = m.DoSharding(nil, rule.PreciseValue{Column: "user_id"})
	assert.Error(t, err)
	_, err = m.DoSharding(nil, rule.PreciseValue{Column: "order_id", Value: 1})
	assert.Error(t, err)

	a, err = NewInline(Props{
		PropAlgorithmExpression: "ds_$->{user_id % 2}",
		PropAllowRangeQuery:     "true",
	})
	require.NoError(t, err)
	actual, err := a.(rule.StandardAlgorithm).DoSharding(nil, rule.PreciseValue{Column: "user_id", Value: 3})
	assert.NoError(t, err)
	assert.Equal(t, "ds_1", actual)
	res, err := a.(rule.RangeAlgorithm).DoRangeSharding([]string{"ds_0", "ds_1"}, rule.RangeShardingValue{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"ds_0", "ds_1"}, res)

	_, err = NewInline(Props{})
	assert.Error(t, err)
	_, err = NewInline(Props{PropAlgorithmExpression: "t_${)))BAD((("})
	assert.Error(t, err)
	_, err = NewInline(Props{PropAlgorithmExpression: "t_`"})
	assert.Error(t, err)
}

func TestComplexInline(t *testing.T) {
	a, err := NewComplexInline(Props{
		PropAlgorithmExpression: "t_${user_id % 2}_${order_id % 2}",
		PropShardingColumns:     "user_id, order_id",
	})
	require.NoError(t, err)
	c := a.(rule.ComplexAlgorithm)
	targets := []string{"t_0_0", "t_0_1", "t_1_0", "t_1_1"}

	res, err := c.DoSharding(targets, rule.ComplexValues{
		Lists: map[string][]interface{}{
			"user_id":  {1, 3},
			"order_id": {2, 5},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t_1_0", "t_1_1"}, res)

	res, err = c.DoSharding(targets, rule.ComplexValues{
		Lists: map[string][]interface{}{"user_id": {1}},
	})
	assert.NoError(t, err)
	assert.Equal(t, targets, res)

	_, err = c.DoSharding(targets, rule.ComplexValues{
		Ranges: map[string]rule.ValueRange{"user_id": rule.Closed(1, 2)},
	})
	assert.Error(t, err)
}

func TestHintInline(t *testing.T) {
	a, err := NewHintInline(Props{})
	require.NoError(t, err)
	h := a.(rule.HintAlgorithm)

	res, err := h.DoSharding(nil, rule.HintShardingValue{Values: []interface{}{"t_order_1", "t_order_1", "t_order_0"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t_order_1", "t_order_0"}, res)

	a, err = NewHintInline(Props{PropAlgorithmExpression: "ds_${value % 4}"})
	require.NoError(t, err)
	res, err = a.(rule.HintAlgorithm).DoSharding(nil, rule.HintShardingValue{Values: []interface{}{5}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"ds_1"}, res)
}

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
	"strings"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/condition"
	rcontext "github.com/arana-db/sharding-core/pkg/runtime/context"
)

type axis uint8

const (
	axisDatabase axis = iota
	axisTable
)

func (a axis) String() string {
	if a == axisDatabase {
		return "database"
	}
	return "table"
}

// evaluate returns the targets of one axis, ordered as the given targets.
// A nil condition means no sharding value exists for the table.
func evaluate(ctx context.Context, s rule.Strategy, ax axis, table string, targets []string, sc *condition.ShardingCondition) ([]string, error) {
	switch st := s.(type) {
	case *rule.StandardStrategy:
		return evaluateStandard(st, table, targets, sc)
	case *rule.ComplexStrategy:
		return evaluateComplex(st, table, targets, sc)
	case *rule.HintStrategy:
		return evaluateHint(ctx, st, ax, table, targets)
	case *rule.NoneStrategy, nil:
		return targets, nil
	default:
		return nil, errors.Errorf("unknown sharding strategy %T", s)
	}
}

func evaluateStandard(st *rule.StandardStrategy, table string, targets []string, sc *condition.ShardingCondition) ([]string, error) {
	if sc == nil {
		return targets, nil
	}
	v, ok := sc.Find(table, st.ShardingColumn)
	if !ok {
		return targets, nil
	}

	column := strings.ToLower(st.ShardingColumn)

	switch val := v.(type) {
	case *condition.ListValue:
		ret := make([]string, 0, len(val.Values))
		for _, it := range val.Values {
			target, err := st.Algorithm.DoSharding(targets, rule.PreciseValue{Table: table, Column: column, Value: it})
			if err != nil {
				return nil, errors.Wrapf(err, "cannot shard %s.%s by %v", table, column, it)
			}
			ret = append(ret, target)
		}
		return normalize(targets, ret)
	case *condition.RangeValue:
		ra, ok := st.Algorithm.(rule.RangeAlgorithm)
		if !ok {
			return nil, errors.Wrapf(rule.ErrConfiguration, "algorithm %s doesn't support range sharding", st.Algorithm.Type())
		}
		ret, err := ra.DoRangeSharding(targets, rule.RangeShardingValue{Table: table, Column: column, Range: val.Range})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot shard %s.%s by range %s", table, column, val.Range)
		}
		return normalize(targets, ret)
	default:
		return nil, errors.Errorf("unknown condition value %T", v)
	}
}

func evaluateComplex(st *rule.ComplexStrategy, table string, targets []string, sc *condition.ShardingCondition) ([]string, error) {
	if sc == nil {
		return targets, nil
	}

	values := rule.ComplexValues{Table: table}
	for _, column := range st.ShardingColumns {
		v, ok := sc.Find(table, column)
		if !ok {
			continue
		}
		column = strings.ToLower(column)
		switch val := v.(type) {
		case *condition.ListValue:
			if values.Lists == nil {
				values.Lists = make(map[string][]interface{})
			}
			values.Lists[column] = val.Values
		case *condition.RangeValue:
			if values.Ranges == nil {
				values.Ranges = make(map[string]rule.ValueRange)
			}
			values.Ranges[column] = val.Range
		}
	}

	if values.IsEmpty() {
		return targets, nil
	}

	ret, err := st.Algorithm.DoSharding(targets, values)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot shard %s by columns %v", table, st.ShardingColumns)
	}
	return normalize(targets, ret)
}

func evaluateHint(ctx context.Context, st *rule.HintStrategy, ax axis, table string, targets []string) ([]string, error) {
	var (
		hv     = rcontext.HintValues(ctx)
		values []interface{}
	)
	switch ax {
	case axisDatabase:
		values = hv.DatabaseValues(table)
	default:
		values = hv.TableValues(table)
	}
	if len(values) == 0 {
		return targets, nil
	}

	ret, err := st.Algorithm.DoSharding(targets, rule.HintShardingValue{Table: table, Values: values})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot shard %s by %s hint %v", table, ax, values)
	}
	return normalize(targets, ret)
}

// normalize removes duplicates and orders the result as the targets.
func normalize(targets, result []string) ([]string, error) {
	hits := make([]bool, len(targets))
	for _, it := range result {
		found := false
		for i, target := range targets {
			if strings.EqualFold(it, target) {
				hits[i], found = true, true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrTargetNotFound, "'%s' is not one of %v", it, targets)
		}
	}

	ret := make([]string, 0, len(result))
	for i, it := range targets {
		if hits[i] {
			ret = append(ret, it)
		}
	}
	return ret, nil
}

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
	"strconv"
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cast"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

const PropShardingCount = "sharding-count"

var (
	_ rule.StandardAlgorithm = (*modAlgorithm)(nil)
	_ rule.RangeAlgorithm    = (*modAlgorithm)(nil)
)

// modAlgorithm computes the shard as abs(value) % sharding-count.
type modAlgorithm struct {
	count int64
}

// NewMod creates a MOD algorithm.
func NewMod(props Props) (rule.Algorithm, error) {
	count, err := shardingCount(props)
	if err != nil {
		return nil, err
	}
	return &modAlgorithm{count: int64(count)}, nil
}

func (m *modAlgorithm) Type() string {
	return TypeMod
}

func (m *modAlgorithm) DoSharding(targets []string, value rule.PreciseValue) (string, error) {
	n, err := toInt64(value.Value)
	if err != nil {
		return "", errors.Wrapf(err, "%s: cannot shard %s.%s", TypeMod, value.Table, value.Column)
	}
	return matchSuffix(targets, modOf(n, m.count))
}

// DoRangeSharding enumerates the range when it is narrower than the sharding count,
// otherwise every target may contain the values.
func (m *modAlgorithm) DoRangeSharding(targets []string, value rule.RangeShardingValue) ([]string, error) {
	lower, upper, ok := closedIntRange(value.Range)
	// the span is computed in uint64, upper-lower may overflow int64
	if !ok || uint64(upper)-uint64(lower) >= uint64(m.count-1) {
		return targets, nil
	}

	var ret []string
	for i := lower; ; i++ {
		target, err := matchSuffix(targets, modOf(i, m.count))
		if err != nil {
			return nil, err
		}
		ret = appendUnique(ret, target)
		if i == upper || len(ret) == len(targets) {
			break
		}
	}
	return ret, nil
}

// modOf returns abs(n) % count, which stays non-negative for math.MinInt64.
func modOf(n, count int64) int64 {
	r := n % count
	if r < 0 {
		r = -r
	}
	return r
}

func shardingCount(props Props) (int, error) {
	count, ok, err := props.Int(PropShardingCount)
	if err != nil {
		return 0, err
	}
	if !ok || count <= 0 {
		return 0, errors.Errorf("property '%s' should be a positive integer", PropShardingCount)
	}
	return count, nil
}

// closedIntRange returns the integer bounds of a closed range.
func closedIntRange(vr rule.ValueRange) (lower, upper int64, ok bool) {
	if vr.Lower == nil || vr.Upper == nil {
		return
	}
	var err error
	if lower, err = toInt64(vr.Lower.Value); err != nil {
		return
	}
	if upper, err = toInt64(vr.Upper.Value); err != nil {
		return
	}
	if !vr.Lower.Inclusive {
		if lower == math.MaxInt64 {
			return
		}
		lower++
	}
	if !vr.Upper.Inclusive {
		if upper == math.MinInt64 {
			return
		}
		upper--
	}
	ok = lower <= upper
	return
}

func toInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
	case float32, float64:
		f := cast.ToFloat64(val)
		if f != float64(int64(f)) {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int64(f), nil
	case fmt.Stringer:
		return strconv.ParseInt(strings.TrimSpace(val.String()), 10, 64)
	default:
		return cast.ToInt64E(v)
	}
}

// matchSuffix returns the target whose trailing number equals the shard index.
func matchSuffix(targets []string, index int64) (string, error) {
	for _, it := range targets {
		if n, ok := suffixOf(it); ok && n == index {
			return it, nil
		}
	}
	return "", errors.Errorf("no target matches shard index %d in %v", index, targets)
}

func suffixOf(target string) (int64, bool) {
	i := len(target)
	for i > 0 && target[i-1] >= '0' && target[i-1] <= '9' {
		i--
	}
	if i == len(target) {
		return 0, false
	}
	n, err := strconv.ParseInt(target[i:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func appendUnique(dst []string, s string) []string {
	for _, it := range dst {
		if it == s {
			return dst
		}
	}
	return append(dst, s)
}

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
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/shopspring/decimal"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

const PropShardingRanges = "sharding-ranges"

var (
	_ rule.StandardAlgorithm = (*boundaryRangeAlgorithm)(nil)
	_ rule.RangeAlgorithm    = (*boundaryRangeAlgorithm)(nil)
)

// boundaryRangeAlgorithm splits values by ascending boundaries.
// For boundaries b0,b1...bn, partition 0 is (-∞,b0), partition i is [b(i-1),bi) and partition n+1 is [bn,+∞).
type boundaryRangeAlgorithm struct {
	partitions []rule.ValueRange
}

// NewBoundaryRange creates a BOUNDARY_RANGE algorithm from comma separated boundaries.
func NewBoundaryRange(props Props) (rule.Algorithm, error) {
	raw := strings.TrimSpace(props[PropShardingRanges])
	if len(raw) == 0 {
		return nil, errors.Errorf("property '%s' is required", PropShardingRanges)
	}

	var boundaries []decimal.Decimal
	for _, it := range strings.Split(raw, ",") {
		d, err := decimal.NewFromString(strings.TrimSpace(it))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid boundary '%s'", it)
		}
		if n := len(boundaries); n > 0 && !boundaries[n-1].LessThan(d) {
			return nil, errors.Errorf("boundaries should be strictly ascending: %s", raw)
		}
		boundaries = append(boundaries, d)
	}

	partitions := make([]rule.ValueRange, 0, len(boundaries)+1)
	partitions = append(partitions, rule.AtMost(boundaries[0], false))
	for i := 1; i < len(boundaries); i++ {
		partitions = append(partitions, rule.ValueRange{
			Lower: &rule.Bound{Value: boundaries[i-1], Inclusive: true},
			Upper: &rule.Bound{Value: boundaries[i], Inclusive: false},
		})
	}
	partitions = append(partitions, rule.AtLeast(boundaries[len(boundaries)-1], true))

	return &boundaryRangeAlgorithm{partitions: partitions}, nil
}

func (b *boundaryRangeAlgorithm) Type() string {
	return TypeBoundaryRange
}

func (b *boundaryRangeAlgorithm) DoSharding(targets []string, value rule.PreciseValue) (string, error) {
	if _, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(value.Value))); err != nil {
		return "", errors.Wrapf(err, "%s: cannot shard %s.%s", TypeBoundaryRange, value.Table, value.Column)
	}
	for i, it := range b.partitions {
		if it.Contains(value.Value) {
			return matchSuffix(targets, int64(i))
		}
	}
	return "", errors.Errorf("%s: no partition for value %v", TypeBoundaryRange, value.Value)
}

func (b *boundaryRangeAlgorithm) DoRangeSharding(targets []string, value rule.RangeShardingValue) ([]string, error) {
	var ret []string
	for i, it := range b.partitions {
		if _, ok := it.Intersect(value.Range); !ok {
			continue
		}
		target, err := matchSuffix(targets, int64(i))
		if err != nil {
			return nil, err
		}
		ret = append(ret, target)
	}
	return ret, nil
}

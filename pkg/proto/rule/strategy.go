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

//go:generate mockgen -destination=../../../testdata/mock_algorithm.go -package=testdata . ComplexAlgorithm,HintAlgorithm
package rule

import (
	"strings"
)

const (
	_ StrategyKind = iota
	StrategyNone
	StrategyStandard
	StrategyComplex
	StrategyHint
)

var _strategyKindNames = [...]string{
	StrategyNone:     "NONE",
	StrategyStandard: "STANDARD",
	StrategyComplex:  "COMPLEX",
	StrategyHint:     "HINT",
}

// StrategyKind represents the kind of a sharding strategy.
type StrategyKind uint8

func (k StrategyKind) String() string {
	return _strategyKindNames[k]
}

type (
	// Algorithm is the common part of all sharding algorithms.
	Algorithm interface {
		// Type returns the registered type name, eg: MOD, INLINE.
		Type() string
	}

	// StandardAlgorithm shards by one column and one precise value.
	StandardAlgorithm interface {
		Algorithm
		// DoSharding returns the target which the value belongs to.
		DoSharding(targets []string, value PreciseValue) (string, error)
	}

	// RangeAlgorithm shards by one column and a range of values.
	// Every algorithm used by a StandardStrategy must implement it.
	RangeAlgorithm interface {
		// DoRangeSharding returns all targets which may contain values of the range.
		DoRangeSharding(targets []string, value RangeShardingValue) ([]string, error)
	}

	// ComplexAlgorithm shards by several columns at once.
	ComplexAlgorithm interface {
		Algorithm
		DoSharding(targets []string, values ComplexValues) ([]string, error)
	}

	// HintAlgorithm shards by externally supplied hint values.
	HintAlgorithm interface {
		Algorithm
		DoSharding(targets []string, value HintShardingValue) ([]string, error)
	}
)

// PreciseValue is the input of StandardAlgorithm.
type PreciseValue struct {
	Table  string
	Column string
	Value  interface{}
}

// RangeShardingValue is the input of RangeAlgorithm.
type RangeShardingValue struct {
	Table  string
	Column string
	Range  ValueRange
}

// ComplexValues is the input of ComplexAlgorithm, keyed by column.
type ComplexValues struct {
	Table  string
	Lists  map[string][]interface{}
	Ranges map[string]ValueRange
}

// IsEmpty returns true if no column carries any value.
func (cv ComplexValues) IsEmpty() bool {
	return len(cv.Lists) == 0 && len(cv.Ranges) == 0
}

// HintShardingValue is the input of HintAlgorithm.
type HintShardingValue struct {
	Table  string
	Values []interface{}
}

// Strategy decides how the values of sharding columns are mapped to targets.
// Implementations: *StandardStrategy, *ComplexStrategy, *HintStrategy, *NoneStrategy.
type Strategy interface {
	// Kind returns the kind of current strategy.
	Kind() StrategyKind
	// Columns returns the sharding columns, empty for hint and none strategies.
	Columns() []string
	isStrategy()
}

var (
	_ Strategy = (*StandardStrategy)(nil)
	_ Strategy = (*ComplexStrategy)(nil)
	_ Strategy = (*HintStrategy)(nil)
	_ Strategy = (*NoneStrategy)(nil)
)

// StandardStrategy shards by a single column.
type StandardStrategy struct {
	ShardingColumn string
	Algorithm      StandardAlgorithm
}

func (s *StandardStrategy) Kind() StrategyKind {
	return StrategyStandard
}

func (s *StandardStrategy) Columns() []string {
	return []string{s.ShardingColumn}
}

func (s *StandardStrategy) isStrategy() {}

// ComplexStrategy shards by multiple columns jointly.
type ComplexStrategy struct {
	ShardingColumns []string
	Algorithm       ComplexAlgorithm
}

func (s *ComplexStrategy) Kind() StrategyKind {
	return StrategyComplex
}

func (s *ComplexStrategy) Columns() []string {
	return s.ShardingColumns
}

func (s *ComplexStrategy) isStrategy() {}

// HintStrategy ignores sql conditions and shards by hint values.
type HintStrategy struct {
	Algorithm HintAlgorithm
}

func (s *HintStrategy) Kind() StrategyKind {
	return StrategyHint
}

func (s *HintStrategy) Columns() []string {
	return nil
}

func (s *HintStrategy) isStrategy() {}

// NoneStrategy routes to all targets.
type NoneStrategy struct{}

func (s *NoneStrategy) Kind() StrategyKind {
	return StrategyNone
}

func (s *NoneStrategy) Columns() []string {
	return nil
}

func (s *NoneStrategy) isStrategy() {}

func hasColumn(s Strategy, column string) bool {
	if s == nil {
		return false
	}
	for _, it := range s.Columns() {
		if strings.EqualFold(it, column) {
			return true
		}
	}
	return false
}

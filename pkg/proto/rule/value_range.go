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
	"fmt"
	"strings"
	"time"
)

import (
	"github.com/pkg/errors"

	"github.com/shopspring/decimal"

	"github.com/spf13/cast"
)

// Bound is one end of a ValueRange.
type Bound struct {
	Value     interface{}
	Inclusive bool
}

// ValueRange is a continuous range of values, a nil bound means unbounded.
type ValueRange struct {
	Lower *Bound
	Upper *Bound
}

// AtLeast returns the range [v, +∞) or (v, +∞).
func AtLeast(v interface{}, inclusive bool) ValueRange {
	return ValueRange{Lower: &Bound{Value: v, Inclusive: inclusive}}
}

// AtMost returns the range (-∞, v] or (-∞, v).
func AtMost(v interface{}, inclusive bool) ValueRange {
	return ValueRange{Upper: &Bound{Value: v, Inclusive: inclusive}}
}

// Closed returns the range [lower, upper].
func Closed(lower, upper interface{}) ValueRange {
	return ValueRange{
		Lower: &Bound{Value: lower, Inclusive: true},
		Upper: &Bound{Value: upper, Inclusive: true},
	}
}

// IsUnbounded returns true if both ends are open.
func (vr ValueRange) IsUnbounded() bool {
	return vr.Lower == nil && vr.Upper == nil
}

// Contains returns true if the value is inside the range.
// Values which cannot be compared with the bounds are treated as contained.
func (vr ValueRange) Contains(v interface{}) bool {
	if vr.Lower != nil {
		c, err := Compare(v, vr.Lower.Value)
		if err == nil && (c < 0 || (c == 0 && !vr.Lower.Inclusive)) {
			return false
		}
	}
	if vr.Upper != nil {
		c, err := Compare(v, vr.Upper.Value)
		if err == nil && (c > 0 || (c == 0 && !vr.Upper.Inclusive)) {
			return false
		}
	}
	return true
}

// IsEmpty returns true if no value can be inside the range.
func (vr ValueRange) IsEmpty() bool {
	if vr.Lower == nil || vr.Upper == nil {
		return false
	}
	c, err := Compare(vr.Lower.Value, vr.Upper.Value)
	if err != nil {
		return false
	}
	return c > 0 || (c == 0 && !(vr.Lower.Inclusive && vr.Upper.Inclusive))
}

// Intersect returns the intersection of two ranges, ok is false if the intersection is empty.
func (vr ValueRange) Intersect(other ValueRange) (ret ValueRange, ok bool) {
	ret.Lower = pickBound(vr.Lower, other.Lower, 1)
	ret.Upper = pickBound(vr.Upper, other.Upper, -1)
	return ret, !ret.IsEmpty()
}

// pickBound returns the tighter bound, sign 1 picks the greater value and -1 picks the smaller one.
func pickBound(a, b *Bound, sign int) *Bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	c, err := Compare(a.Value, b.Value)
	if err != nil {
		return a
	}
	switch c * sign {
	case 1:
		return a
	case -1:
		return b
	default:
		return &Bound{Value: a.Value, Inclusive: a.Inclusive && b.Inclusive}
	}
}

func (vr ValueRange) String() string {
	var sb strings.Builder
	if vr.Lower == nil {
		sb.WriteString("(-∞")
	} else {
		if vr.Lower.Inclusive {
			sb.WriteByte('[')
		} else {
			sb.WriteByte('(')
		}
		_, _ = fmt.Fprint(&sb, vr.Lower.Value)
	}
	sb.WriteString("..")
	if vr.Upper == nil {
		sb.WriteString("+∞)")
	} else {
		_, _ = fmt.Fprint(&sb, vr.Upper.Value)
		if vr.Upper.Inclusive {
			sb.WriteByte(']')
		} else {
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

// Compare compares two sharding values.
// Numbers (including numeric strings) are compared by value, times by instant, other strings lexically.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return 0, errors.Errorf("cannot compare nil values: %v, %v", a, b)
	}

	if ta, ok := a.(time.Time); ok {
		tb, err := cast.ToTimeE(b)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot compare %v with %v", a, b)
		}
		return compareTime(ta, tb), nil
	}
	if tb, ok := b.(time.Time); ok {
		ta, err := cast.ToTimeE(a)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot compare %v with %v", a, b)
		}
		return compareTime(ta, tb), nil
	}

	da, aok := toDecimal(a)
	db, bok := toDecimal(b)
	if aok && bok {
		return da.Cmp(db), nil
	}

	sa, err := cast.ToStringE(a)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot compare %v with %v", a, b)
	}
	sb, err := cast.ToStringE(b)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot compare %v with %v", a, b)
	}
	return strings.Compare(sa, sb), nil
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero, false
		}
		return *val, true
	case int, int8, int16, int32, int64:
		return decimal.NewFromInt(cast.ToInt64(val)), true
	case uint, uint8, uint16, uint32, uint64:
		d, err := decimal.NewFromString(cast.ToString(val))
		return d, err == nil
	case float32:
		return decimal.NewFromFloat32(val), true
	case float64:
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(val)))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

import (
	"github.com/pkg/errors"
)

// MaxInlineExpansion is the max count of names an inline expression can produce.
const MaxInlineExpansion = 1 << 16

var (
	_regexpInline     *regexp.Regexp
	_regexpInlineOnce sync.Once

	_regexpInlineRange     *regexp.Regexp
	_regexpInlineRangeOnce sync.Once
)

func getInlineRegexp() *regexp.Regexp {
	_regexpInlineOnce.Do(func() {
		_regexpInline = regexp.MustCompile(`\$(?:->)?\{([^{}]*)}`)
	})
	return _regexpInline
}

func getInlineRangeRegexp() *regexp.Regexp {
	_regexpInlineRangeOnce.Do(func() {
		_regexpInlineRange = regexp.MustCompile(`^\s*(?P<begin>\d+)\s*\.{2}\s*(?P<end>\d+)\s*$`)
	})
	return _regexpInlineRange
}

// ExpandInline expands an inline expression into names.
//
// Supported segments:
//   - range: t_order_${0..3}, the width of begin is kept, eg: ${00..15} gives 00,01...15
//   - list: ds_${['a','b']} or ds_${[a,b]}
//
// Several segments produce the cartesian product, the leftmost segment changes slowest.
// An expression without segments gives itself.
func ExpandInline(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if len(expr) == 0 {
		return nil, errors.New("empty inline expression")
	}

	locs := getInlineRegexp().FindAllStringSubmatchIndex(expr, -1)
	if len(locs) == 0 {
		if strings.Contains(expr, "${") {
			return nil, errors.Errorf("invalid inline expression '%s'", expr)
		}
		return []string{expr}, nil
	}

	ret := []string{""}
	prev := 0
	for _, loc := range locs {
		values, err := parseInlineSegment(expr[loc[2]:loc[3]])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid inline expression '%s'", expr)
		}
		if len(ret)*len(values) > MaxInlineExpansion {
			return nil, errors.Errorf("inline expression '%s' produces more than %d names", expr, MaxInlineExpansion)
		}
		literal := expr[prev:loc[0]]
		next := make([]string, 0, len(ret)*len(values))
		for _, head := range ret {
			for _, v := range values {
				next = append(next, head+literal+v)
			}
		}
		ret = next
		prev = loc[1]
	}

	if tail := expr[prev:]; len(tail) > 0 {
		if strings.Contains(tail, "${") {
			return nil, errors.Errorf("invalid inline expression '%s'", expr)
		}
		for i := range ret {
			ret[i] += tail
		}
	}

	return ret, nil
}

// ExpandInlines expands every expression and concatenates the results.
func ExpandInlines(exprs []string) ([]string, error) {
	var ret []string
	for _, it := range exprs {
		names, err := ExpandInline(it)
		if err != nil {
			return nil, err
		}
		ret = append(ret, names...)
	}
	return ret, nil
}

func parseInlineSegment(segment string) ([]string, error) {
	segment = strings.TrimSpace(segment)

	if mat := getInlineRangeRegexp().FindStringSubmatch(segment); mat != nil {
		beginStr, endStr := mat[1], mat[2]
		begin, err := strconv.Atoi(beginStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		end, err := strconv.Atoi(endStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if begin > end {
			return nil, errors.Errorf("descending range '%s'", segment)
		}
		if end-begin+1 > MaxInlineExpansion {
			return nil, errors.Errorf("range '%s' is too large", segment)
		}
		width := len(beginStr)
		ret := make([]string, 0, end-begin+1)
		for i := begin; i <= end; i++ {
			ret = append(ret, fmt.Sprintf("%0*d", width, i))
		}
		return ret, nil
	}

	if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
		var ret []string
		for _, it := range strings.Split(segment[1:len(segment)-1], ",") {
			it = strings.Trim(strings.TrimSpace(it), `'"`)
			if len(it) == 0 {
				return nil, errors.Errorf("blank element in list '%s'", segment)
			}
			ret = append(ret, it)
		}
		return ret, nil
	}

	return nil, errors.Errorf("unsupported segment '%s'", segment)
}

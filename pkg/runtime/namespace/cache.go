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

package namespace

import (
	"fmt"
	"strconv"
)

import (
	"github.com/cespare/xxhash/v2"

	lru "github.com/hashicorp/golang-lru"

	"golang.org/x/sync/singleflight"
)

// DefaultPlanCacheSize is the capacity of plan cache if not configured.
const DefaultPlanCacheSize = 1024

// planCache caches plans by key, concurrent builds of one key are merged into one.
type planCache struct {
	plans *lru.Cache
	group singleflight.Group
}

func newPlanCache(size int) (*planCache, error) {
	if size <= 0 {
		size = DefaultPlanCacheSize
	}
	plans, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &planCache{plans: plans}, nil
}

// load returns the cached plan, or builds it once for all concurrent callers of the key.
func (pc *planCache) load(key uint64, build func() (*Plan, error)) (plan *Plan, hit bool, err error) {
	if exist, ok := pc.plans.Get(key); ok {
		return exist.(*Plan), true, nil
	}

	res, err, _ := pc.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
		if exist, ok := pc.plans.Get(key); ok {
			return exist, nil
		}
		next, err := build()
		if err != nil {
			return nil, err
		}
		pc.plans.Add(key, next)
		return next, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.(*Plan), false, nil
}

func (pc *planCache) len() int {
	return pc.plans.Len()
}

func (pc *planCache) purge() {
	pc.plans.Purge()
}

// planKey hashes everything which decides a plan: rule version, sql, parameters and hints.
func planKey(version uint64, sql string, params []interface{}, hints string) uint64 {
	xh := xxhash.New()
	_, _ = xh.WriteString(strconv.FormatUint(version, 10))
	_, _ = xh.WriteString("\x00")
	_, _ = xh.WriteString(sql)
	_, _ = xh.WriteString("\x00")
	_, _ = xh.WriteString(strconv.Itoa(len(params)))
	for _, it := range params {
		_, _ = xh.WriteString("\x00")
		_, _ = fmt.Fprintf(xh, "%T:%v", it, it)
	}
	_, _ = xh.WriteString("\x00")
	_, _ = xh.WriteString(hints)
	return xh.Sum64()
}

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
	"crypto/md5"
	"fmt"
	"hash/crc32"
	"strings"
)

import (
	gxhash "github.com/dubbogo/gost/hash"
	gxmath "github.com/dubbogo/gost/math"

	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

const PropHash = "hash"

// Hash functions of HASH_MOD.
const (
	HashCrc32 = "crc32"
	HashMd5   = "md5"
	HashBKDR  = "bkdr"
)

var _hashFuncs = map[string]func(s string, count int64) int64{
	HashCrc32: crc32Hash,
	HashMd5:   md5Hash,
	HashBKDR:  bkdrHash,
}

var (
	_ rule.StandardAlgorithm = (*hashModAlgorithm)(nil)
	_ rule.RangeAlgorithm    = (*hashModAlgorithm)(nil)
)

// hashModAlgorithm computes the shard as hash(value) % sharding-count.
type hashModAlgorithm struct {
	count int64
	hash  func(s string, count int64) int64
}

// NewHashMod creates a HASH_MOD algorithm, the hash function defaults to crc32.
func NewHashMod(props Props) (rule.Algorithm, error) {
	count, err := shardingCount(props)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(props[PropHash]))
	if len(name) == 0 {
		name = HashCrc32
	}
	h, ok := _hashFuncs[name]
	if !ok {
		return nil, errors.Errorf("unsupported hash function '%s'", name)
	}

	return &hashModAlgorithm{
		count: int64(count),
		hash:  h,
	}, nil
}

func (h *hashModAlgorithm) Type() string {
	return TypeHashMod
}

func (h *hashModAlgorithm) DoSharding(targets []string, value rule.PreciseValue) (string, error) {
	if value.Value == nil {
		return "", errors.Errorf("%s: cannot shard %s.%s by NULL", TypeHashMod, value.Table, value.Column)
	}
	return matchSuffix(targets, h.hash(fmt.Sprint(value.Value), h.count))
}

// DoRangeSharding returns all targets since hashing breaks the order of values.
func (h *hashModAlgorithm) DoRangeSharding(targets []string, _ rule.RangeShardingValue) ([]string, error) {
	return targets, nil
}

func crc32Hash(s string, count int64) int64 {
	return int64(crc32.ChecksumIEEE([]byte(s))) % count
}

func md5Hash(s string, count int64) int64 {
	var (
		h   uint64
		sum = md5.Sum([]byte(s))
	)

	n := count
	bytesNum := 1
	for ; bytesNum < len(sum); bytesNum++ {
		n >>= 8
		if n&0xFF == 0 {
			break
		}
	}

	for i := 0; i < bytesNum; i++ {
		h <<= 8
		h |= uint64(sum[i]) & 0xFF
	}
	return int64(h % uint64(count))
}

func bkdrHash(s string, count int64) int64 {
	return int64(gxmath.AbsInt32(gxhash.BKDRHash(s))) % count
}

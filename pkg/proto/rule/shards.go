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
)

import (
	"github.com/google/btree"
)

// UnionShards merges all given shards into a new one.
func UnionShards(first *Shards, others ...*Shards) *Shards {
	ret := NewShards()

	h := func(db, tb uint32) bool {
		ret.Add(db, tb)
		return true
	}
	first.Each(h)
	for _, next := range others {
		next.Each(h)
	}

	return ret
}

// Shards is an ordered set of data node positions of one table rule.
// A position is the index of the data source and the index of the table on that data source.
type Shards btree.BTree

func NewShards() *Shards {
	return (*Shards)(btree.New(2))
}

func (sd *Shards) Add(db, table uint32, otherTables ...uint32) {
	(*btree.BTree)(sd).ReplaceOrInsert(newShard(db, table))
	for _, next := range otherTables {
		(*btree.BTree)(sd).ReplaceOrInsert(newShard(db, next))
	}
}

func (sd *Shards) Contains(db, table uint32) bool {
	if sd == nil {
		return false
	}
	return (*btree.BTree)(sd).Has(newShard(db, table))
}

// Each visits positions in ascending order until h returns false.
func (sd *Shards) Each(h func(db, tb uint32) bool) {
	if sd == nil {
		return
	}
	(*btree.BTree)(sd).Ascend(func(i btree.Item) bool {
		s := i.(shard)
		return h(s.getDB(), s.getTable())
	})
}

func (sd *Shards) Min() (db, tb uint32, ok bool) {
	min := (*btree.BTree)(sd).Min()
	if min == nil {
		return
	}
	s := min.(shard)
	db, tb, ok = s.getDB(), s.getTable(), true
	return
}

func (sd *Shards) Len() int {
	if sd == nil {
		return 0
	}
	return (*btree.BTree)(sd).Len()
}

func (sd *Shards) String() string {
	if sd == nil {
		return "*"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	prev := int64(-1)
	sd.Each(func(db, tb uint32) bool {
		if prev != int64(db) {
			if prev != -1 {
				sb.WriteByte(';')
			}
			_, _ = fmt.Fprint(&sb, db)
			prev = int64(db)
			sb.WriteByte(':')
		} else {
			sb.WriteByte(',')
		}
		_, _ = fmt.Fprint(&sb, tb)
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

type shard uint64

func newShard(db, tb uint32) shard {
	return shard(uint64(db)<<32 | uint64(tb))
}

func (s shard) Less(than btree.Item) bool {
	return s < than.(shard)
}

func (s shard) getDB() uint32 {
	return uint32(s >> 32)
}

func (s shard) getTable() uint32 {
	return uint32(s)
}

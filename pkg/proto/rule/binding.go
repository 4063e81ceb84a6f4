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
	"strings"
)

// BindingGroup is a set of sharding tables which are always accessed at the same shard position.
type BindingGroup struct {
	tables []string
}

// Tables returns the member tables, the first one is the representative.
func (bg *BindingGroup) Tables() []string {
	return bg.tables
}

func (bg *BindingGroup) Contains(table string) bool {
	for _, it := range bg.tables {
		if strings.EqualFold(it, table) {
			return true
		}
	}
	return false
}

// Representative returns the first member which appears in the given tables.
func (bg *BindingGroup) Representative(present []string) (string, bool) {
	for _, it := range bg.tables {
		for _, next := range present {
			if strings.EqualFold(it, next) {
				return it, true
			}
		}
	}
	return "", false
}

func (bg *BindingGroup) String() string {
	return "[" + strings.Join(bg.tables, ",") + "]"
}

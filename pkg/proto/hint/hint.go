/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hint

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

import (
	"github.com/pkg/errors"
)

const (
	_                 Type = iota
	TypeShardingDB         // sharding value of database axis
	TypeShardingTable      // sharding value of table axis
	TypeFullScan           // enable full-scan
	TypeTrace              // w3c trace context of the caller
)

var _hintTypes = [...]string{
	TypeShardingDB:    "SHARDING_DB",
	TypeShardingTable: "SHARDING_TABLE",
	TypeFullScan:      "FULLSCAN",
	TypeTrace:         "TRACE",
}

// AllTables is the key of values which apply to every table.
const AllTables = "*"

// KeyValue represents a pair of key and value.
type KeyValue struct {
	K string // key (optional)
	V string // value
}

// Type represents the type of Hint.
type Type uint8

// String returns the display string.
func (tp Type) String() string {
	return _hintTypes[tp]
}

// Hint represents a Hint, a valid Hint should include type and input kv pairs.
//
// Follow the format below:
//   - without inputs: YOUR_HINT()
//   - with non-keyed inputs: YOUR_HINT(foo,bar,quz)
//   - with keyed inputs: YOUR_HINT(x=foo,y=bar,z=quz)
//
// For SHARDING_DB and SHARDING_TABLE, the key is the logical table and
// a non-keyed input applies to every table, eg: SHARDING_TABLE(t_log=1,t_log=3).
type Hint struct {
	Type   Type
	Inputs []KeyValue
}

// String returns the display string.
func (h Hint) String() string {
	var sb strings.Builder
	sb.WriteString(h.Type.String())

	if len(h.Inputs) < 1 {
		sb.WriteString("()")
		return sb.String()
	}

	sb.WriteByte('(')

	writeKv := func(p KeyValue) {
		if key := p.K; len(key) > 0 {
			sb.WriteString(key)
			sb.WriteByte('=')
		}
		sb.WriteString(p.V)
	}

	writeKv(h.Inputs[0])
	for i := 1; i < len(h.Inputs); i++ {
		sb.WriteByte(',')
		writeKv(h.Inputs[i])
	}

	sb.WriteByte(')')
	return sb.String()
}

// Parse parses Hint from an input string.
func Parse(s string) (*Hint, error) {
	var (
		tpStr string
		tp    Type
	)

	offset := strings.Index(s, "(")
	if offset == -1 {
		tpStr = s
	} else {
		tpStr = s[:offset]
	}

	for i, v := range _hintTypes {
		if strings.EqualFold(tpStr, v) {
			tp = Type(i)
			break
		}
	}

	if tp == 0 {
		return nil, errors.Errorf("hint: invalid input '%s'", s)
	}

	if offset == -1 {
		return &Hint{Type: tp}, nil
	}

	end := strings.LastIndex(s, ")")
	if end == -1 {
		return nil, errors.Errorf("hint: invalid input '%s'", s)
	}

	s = s[offset+1 : end]

	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Split(scanComma)

	var kvs []KeyValue

	for scanner.Scan() {
		text := scanner.Text()

		// split kv by '='
		i := strings.Index(text, "=")
		if i == -1 {
			// omit blank text
			if isBlank(text) {
				continue
			}
			kvs = append(kvs, KeyValue{V: strings.TrimSpace(text)})
		} else {
			var (
				k = strings.TrimSpace(text[:i])
				v = strings.TrimSpace(text[i+1:])
			)
			// omit blank key/value
			if isBlank(k) || isBlank(v) {
				continue
			}
			kvs = append(kvs, KeyValue{K: k, V: v})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "hint: invalid input '%s'", s)
	}

	return &Hint{Type: tp, Inputs: kvs}, nil
}

func scanComma(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, ','); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func Contains(hType Type, hints []*Hint) bool {
	for _, v := range hints {
		if v.Type == hType {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// Values holds the sharding values supplied by hints, keyed by lower-case logical table.
type Values struct {
	db map[string][]interface{}
	tb map[string][]interface{}
}

// FromHints collects sharding values from parsed hints.
func FromHints(hints []*Hint) *Values {
	var ret Values
	for _, h := range hints {
		for _, in := range h.Inputs {
			table := in.K
			if len(table) == 0 {
				table = AllTables
			}
			switch h.Type {
			case TypeShardingDB:
				ret.AddDatabaseValue(table, in.V)
			case TypeShardingTable:
				ret.AddTableValue(table, in.V)
			}
		}
	}
	return &ret
}

// AddDatabaseValue adds a sharding value of the database axis.
func (v *Values) AddDatabaseValue(table string, value interface{}) {
	if v.db == nil {
		v.db = make(map[string][]interface{})
	}
	table = strings.ToLower(table)
	v.db[table] = append(v.db[table], value)
}

// AddTableValue adds a sharding value of the table axis.
func (v *Values) AddTableValue(table string, value interface{}) {
	if v.tb == nil {
		v.tb = make(map[string][]interface{})
	}
	table = strings.ToLower(table)
	v.tb[table] = append(v.tb[table], value)
}

// DatabaseValues returns the database axis values of the table, falls back to values of all tables.
func (v *Values) DatabaseValues(table string) []interface{} {
	if v == nil {
		return nil
	}
	return lookup(v.db, table)
}

// TableValues returns the table axis values of the table, falls back to values of all tables.
func (v *Values) TableValues(table string) []interface{} {
	if v == nil {
		return nil
	}
	return lookup(v.tb, table)
}

func (v *Values) IsEmpty() bool {
	return v == nil || (len(v.db) == 0 && len(v.tb) == 0)
}

// String returns a stable display string.
func (v *Values) String() string {
	if v.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	write := func(prefix string, m map[string][]interface{}) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(&sb, "%s:%s=%v;", prefix, k, m[k])
		}
	}
	write("db", v.db)
	write("tb", v.tb)
	return sb.String()
}

func lookup(m map[string][]interface{}, table string) []interface{} {
	if ret, ok := m[strings.ToLower(table)]; ok {
		return ret
	}
	return m[AllTables]
}

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
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	type tt struct {
		input  string
		output string
		pass   bool
	}

	for _, next := range []tt{
		{"sharding_table( 1 , 2 , 3 )", "SHARDING_TABLE(1,2,3)", true},
		{"fullscan", "FULLSCAN()", true},
		{"trace(00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01)", "TRACE(00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01)", true},
		{"master(1,2,3)", "", false},
		{"sharding_db(,,,)", "SHARDING_DB()", true},
		{"sharding_db(t_log=1", "", false},
		{"sharding_db(t_log=1,t_order= ,t_log=3,)", "SHARDING_DB(t_log=1,t_log=3)", true},
	} {
		t.Run(next.input, func(t *testing.T) {
			res, err := Parse(next.input)
			if next.pass {
				assert.NoError(t, err)
				assert.Equal(t, next.output, res.String())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValues(t *testing.T) {
	var hints []*Hint
	for _, it := range []string{"sharding_db(t_log=1,t_log=3)", "sharding_table(7)", "fullscan()"} {
		h, err := Parse(it)
		assert.NoError(t, err)
		hints = append(hints, h)
	}

	assert.True(t, Contains(TypeFullScan, hints))
	assert.False(t, Contains(TypeShardingDB, hints[1:]))

	v := FromHints(hints)
	assert.False(t, v.IsEmpty())
	assert.Equal(t, []interface{}{"1", "3"}, v.DatabaseValues("T_LOG"))
	assert.Nil(t, v.DatabaseValues("t_order"))
	assert.Equal(t, []interface{}{"7"}, v.TableValues("t_log"))
	assert.Equal(t, []interface{}{"7"}, v.TableValues("t_order"))
	assert.Equal(t, "db:t_log=[1 3];tb:*=[7];", v.String())

	var empty *Values
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.TableValues("t_log"))
	assert.Equal(t, "", empty.String())
}

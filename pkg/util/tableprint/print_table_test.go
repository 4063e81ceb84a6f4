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

package tableprint

import (
	"bytes"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []string{"TABLE", "DATA NODES"}, [][]string{
		{"t_order", "ds_0.t_order_0"},
		{"t_user", "ds_0.t_user"},
	})

	s := buf.String()
	assert.Contains(t, s, "TABLE")
	assert.Contains(t, s, "DATA NODES")
	assert.Contains(t, s, "ds_0.t_order_0")
	assert.NotContains(t, s, "\033[32m")

	buf.Reset()
	WriteTableColor(&buf, []string{"TABLE"}, [][]string{{"t_order"}})
	assert.Contains(t, buf.String(), "\033[32mTABLE\033[0m")
}

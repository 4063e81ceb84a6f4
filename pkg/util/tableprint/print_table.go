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
	"fmt"
	"io"
)

import (
	"github.com/olekukonko/tablewriter"
)

// WriteTable writes rows into writer as table format.
func WriteTable(w io.Writer, header []string, rows [][]string) {
	writeTable(w, header, rows, false)
}

// WriteTableColor writes colorful table into writer.
func WriteTableColor(w io.Writer, header []string, rows [][]string) {
	writeTable(w, header, rows, true)
}

func writeTable(w io.Writer, header []string, rows [][]string, color bool) {
	labels := make([]string, 0, len(header))
	for _, it := range header {
		if color {
			it = fmt.Sprintf("\033[32m%s\033[0m", it)
		}
		labels = append(labels, it)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(labels)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

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

//go:generate mockgen -destination=../../testdata/mock_metadata.go -package=testdata . Metadata
package proto

import (
	"strings"
)

// Metadata exposes the physical locations which are not described by sharding rules.
type Metadata interface {
	// FindSingleTable returns the data source which holds the single table.
	FindSingleTable(table string) (dataSource string, ok bool)
	// FindTableByIndex returns the logical table which owns the index.
	FindTableByIndex(index string) (table string, ok bool)
}

// TableMetadata describes a physical table of a data source.
type TableMetadata struct {
	Name       string
	DataSource string
	Indexes    []*IndexMetadata
}

func NewTableMetadata(dataSource, name string, indexes ...string) *TableMetadata {
	tma := &TableMetadata{
		Name:       strings.ToLower(name),
		DataSource: dataSource,
		Indexes:    make([]*IndexMetadata, 0, len(indexes)),
	}
	for _, it := range indexes {
		tma.Indexes = append(tma.Indexes, &IndexMetadata{Name: strings.ToLower(it)})
	}
	return tma
}

type IndexMetadata struct {
	Name string
}

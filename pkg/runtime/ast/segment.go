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

package ast

// Span is the inclusive byte range of a segment in the original SQL.
type Span struct {
	Start int
	Stop  int
}

// OwnerSegment is the qualifier before a dot, eg: the 'employees' of 'employees.t_order'.
type OwnerSegment struct {
	Span
	Name string
	// Owner is the schema qualifier of a table owner, eg: 'db' of 'db.t.col'.
	Owner *OwnerSegment
}

// TableSegment is a table reference, the span covers the table name only.
type TableSegment struct {
	Span
	Name  string
	Owner *OwnerSegment
	Alias string
}

// ColumnSegment is a bound column reference, the span covers the column name only.
type ColumnSegment struct {
	Span
	Name string
	// Table is the bound logical table of the column.
	Table string
	Owner *OwnerSegment
}

// IndexSegment is an index name.
type IndexSegment struct {
	Span
	Name string
}

// Assignment is one 'column = value' item of SET or ON DUPLICATE KEY UPDATE.
type Assignment struct {
	Column *ColumnSegment
	Value  Expr
}

// InsertValues is one value group of INSERT VALUES, the span covers the parentheses.
type InsertValues struct {
	Span
	Values []Expr
}

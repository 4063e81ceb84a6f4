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

type CreateTableStatement struct {
	SQL         string
	Table       *TableSegment
	IfNotExists bool
	// Indexes are the inline index definitions.
	Indexes []*IndexSegment
}

func (s *CreateTableStatement) Mode() SQLType           { return SQLTypeCreateTable }
func (s *CreateTableStatement) Text() string            { return s.SQL }
func (s *CreateTableStatement) Tables() []*TableSegment { return []*TableSegment{s.Table} }
func (s *CreateTableStatement) isStatement()            {}

type AlterTableStatement struct {
	SQL     string
	Table   *TableSegment
	Indexes []*IndexSegment
}

func (s *AlterTableStatement) Mode() SQLType           { return SQLTypeAlterTable }
func (s *AlterTableStatement) Text() string            { return s.SQL }
func (s *AlterTableStatement) Tables() []*TableSegment { return []*TableSegment{s.Table} }
func (s *AlterTableStatement) isStatement()            {}

type DropTableStatement struct {
	SQL      string
	Targets  []*TableSegment
	IfExists bool
}

func (s *DropTableStatement) Mode() SQLType           { return SQLTypeDropTable }
func (s *DropTableStatement) Text() string            { return s.SQL }
func (s *DropTableStatement) Tables() []*TableSegment { return s.Targets }
func (s *DropTableStatement) isStatement()            {}

type TruncateStatement struct {
	SQL   string
	Table *TableSegment
}

func (s *TruncateStatement) Mode() SQLType           { return SQLTypeTruncate }
func (s *TruncateStatement) Text() string            { return s.SQL }
func (s *TruncateStatement) Tables() []*TableSegment { return []*TableSegment{s.Table} }
func (s *TruncateStatement) isStatement()            {}

type CreateIndexStatement struct {
	SQL   string
	Index *IndexSegment
	Table *TableSegment
}

func (s *CreateIndexStatement) Mode() SQLType           { return SQLTypeCreateIndex }
func (s *CreateIndexStatement) Text() string            { return s.SQL }
func (s *CreateIndexStatement) Tables() []*TableSegment { return []*TableSegment{s.Table} }
func (s *CreateIndexStatement) isStatement()            {}

// DropIndexStatement drops indexes, Table is nil when the table is omitted
// and has to be resolved from the index name.
type DropIndexStatement struct {
	SQL     string
	Indexes []*IndexSegment
	Table   *TableSegment
}

func (s *DropIndexStatement) Mode() SQLType { return SQLTypeDropIndex }
func (s *DropIndexStatement) Text() string  { return s.SQL }
func (s *DropIndexStatement) isStatement()  {}

func (s *DropIndexStatement) Tables() []*TableSegment {
	if s.Table == nil {
		return nil
	}
	return []*TableSegment{s.Table}
}

// Indexes returns the index segments of the statement.
func Indexes(stmt Statement) []*IndexSegment {
	switch s := stmt.(type) {
	case *CreateTableStatement:
		return s.Indexes
	case *AlterTableStatement:
		return s.Indexes
	case *CreateIndexStatement:
		return []*IndexSegment{s.Index}
	case *DropIndexStatement:
		return s.Indexes
	default:
		return nil
	}
}

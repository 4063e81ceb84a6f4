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

// Package ast defines the bound statement tree consumed by routing and rewriting.
// The tree is produced by an external parser and binder: identifiers are resolved,
// every column knows its logical table, and every segment keeps the inclusive
// byte offsets of its text in the original SQL.
package ast

import (
	"strings"
)

import (
	"github.com/pkg/errors"
)

const (
	_                   SQLType = iota
	SQLTypeSelect               // SELECT
	SQLTypeDelete               // DELETE
	SQLTypeUpdate               // UPDATE
	SQLTypeInsert               // INSERT
	SQLTypeInsertSelect         // INSERT SELECT
	SQLTypeCreateTable          // CREATE TABLE
	SQLTypeAlterTable           // ALTER TABLE
	SQLTypeDropTable            // DROP TABLE
	SQLTypeTruncate             // TRUNCATE
	SQLTypeCreateIndex          // CREATE INDEX
	SQLTypeDropIndex            // DROP INDEX
)

var _sqlTypeNames = [...]string{
	SQLTypeSelect:       "SELECT",
	SQLTypeDelete:       "DELETE",
	SQLTypeUpdate:       "UPDATE",
	SQLTypeInsert:       "INSERT",
	SQLTypeInsertSelect: "INSERT SELECT",
	SQLTypeCreateTable:  "CREATE TABLE",
	SQLTypeAlterTable:   "ALTER TABLE",
	SQLTypeDropTable:    "DROP TABLE",
	SQLTypeTruncate:     "TRUNCATE",
	SQLTypeCreateIndex:  "CREATE INDEX",
	SQLTypeDropIndex:    "DROP INDEX",
}

// ErrUnknownStatement is returned when a statement or expression variant is not supported.
var ErrUnknownStatement = errors.New("unknown statement")

func IsUnknownStatementErr(err error) bool {
	return errors.Is(err, ErrUnknownStatement)
}

// SQLType represents the type of SQL.
type SQLType uint8

func (s SQLType) String() string {
	if int(s) >= len(_sqlTypeNames) {
		return "UNKNOWN"
	}
	return _sqlTypeNames[s]
}

// IsDML returns true for INSERT, UPDATE and DELETE.
func (s SQLType) IsDML() bool {
	switch s {
	case SQLTypeInsert, SQLTypeInsertSelect, SQLTypeUpdate, SQLTypeDelete:
		return true
	}
	return false
}

// IsDDL returns true for table and index definitions.
func (s SQLType) IsDDL() bool {
	switch s {
	case SQLTypeCreateTable, SQLTypeAlterTable, SQLTypeDropTable, SQLTypeTruncate, SQLTypeCreateIndex, SQLTypeDropIndex:
		return true
	}
	return false
}

// Statement represents a bound SQL statement.
// Implementations: *SelectStatement, *InsertStatement, *UpdateStatement, *DeleteStatement,
// *CreateTableStatement, *AlterTableStatement, *DropTableStatement, *TruncateStatement,
// *CreateIndexStatement, *DropIndexStatement.
type Statement interface {
	// Mode returns the SQLType of current Statement.
	Mode() SQLType
	// Text returns the original SQL text.
	Text() string
	// Tables returns all table segments in order of appearance.
	Tables() []*TableSegment
	isStatement()
}

// TableNames returns the distinct lower-case logical table names of the statement, in order of appearance.
func TableNames(stmt Statement) []string {
	var (
		ret    []string
		visits = make(map[string]struct{})
	)
	for _, it := range stmt.Tables() {
		name := strings.ToLower(it.Name)
		if _, ok := visits[name]; ok {
			continue
		}
		visits[name] = struct{}{}
		ret = append(ret, name)
	}
	return ret
}

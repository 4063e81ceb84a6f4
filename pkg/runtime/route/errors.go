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

package route

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedMultiTable is returned when the tables of a statement cannot be routed together.
	ErrUnsupportedMultiTable = errors.New("unsupported multiple tables")
	// ErrShardingKeyUpdated is returned when a statement moves rows to another shard.
	ErrShardingKeyUpdated = errors.New("sharding key cannot be updated across shards")
	// ErrSingleTableCrossDataSource is returned when single tables live in different data sources.
	ErrSingleTableCrossDataSource = errors.New("single tables cross data sources")
	// ErrInsertMultiNodes is returned when one INSERT value group is routed to several data nodes.
	ErrInsertMultiNodes = errors.New("insert value group routed to multiple data nodes")
	// ErrTableNotFound is returned when a table cannot be located.
	ErrTableNotFound = errors.New("table not found")
	// ErrTargetNotFound is returned when an algorithm produces a target which doesn't exist.
	ErrTargetNotFound = errors.New("sharding target not found")
	// ErrDenyFullScan is returned when a DML statement would scan all data nodes.
	ErrDenyFullScan = errors.New("full scan is denied")
)

func IsUnsupportedMultiTableErr(err error) bool {
	return errors.Is(err, ErrUnsupportedMultiTable)
}

func IsShardingKeyUpdatedErr(err error) bool {
	return errors.Is(err, ErrShardingKeyUpdated)
}

func IsSingleTableCrossDataSourceErr(err error) bool {
	return errors.Is(err, ErrSingleTableCrossDataSource)
}

func IsInsertMultiNodesErr(err error) bool {
	return errors.Is(err, ErrInsertMultiNodes)
}

func IsTableNotFoundErr(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

func IsTargetNotFoundErr(err error) bool {
	return errors.Is(err, ErrTargetNotFound)
}

func IsDenyFullScanErr(err error) bool {
	return errors.Is(err, ErrDenyFullScan)
}

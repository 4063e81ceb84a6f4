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

import (
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
)

// routeSingleDataSource routes the statement to the sole data source without touching table names.
// Tableless statements use it as well, with the first data source.
func (rt *routing) routeSingleDataSource() *RouteContext {
	return &RouteContext{
		Units: []*RouteUnit{{
			DataSource: RouteMapper{Logical: rt.rule.Database(), Actual: rt.rule.DataSourceNames()[0]},
		}},
	}
}

func (rt *routing) locateSingle(table string) (string, bool) {
	if rt.metadata == nil {
		return "", false
	}
	return rt.metadata.FindSingleTable(table)
}

func (rt *routing) isFederated() bool {
	return rt.stmt.Mode() == ast.SQLTypeSelect && rt.rule.Props().SQLFederationEnabled
}

// routeSingle routes the single tables to the data sources holding them, broadcast tables follow.
func (rt *routing) routeSingle() (*RouteContext, error) {
	var (
		dataSources []string
		located     = make(map[string][]string)
		creating    bool
	)

	for _, it := range rt.singles {
		ds, ok := rt.locateSingle(it)
		if !ok {
			if rt.stmt.Mode() != ast.SQLTypeCreateTable {
				return nil, errors.Wrapf(ErrTableNotFound, "cannot find the data source of table '%s'", it)
			}
			creating = true
			if def := rt.rule.Props().DefaultSingleDataSource; len(def) > 0 {
				ds = def
			} else {
				for _, next := range rt.rule.DataSourceNames() {
					dataSources = appendDistinct(dataSources, next)
					located[next] = append(located[next], it)
				}
				continue
			}
		}
		dataSources = appendDistinct(dataSources, ds)
		located[ds] = append(located[ds], it)
	}

	if len(dataSources) > 1 && !creating && !rt.isFederated() {
		return nil, errors.Wrapf(ErrSingleTableCrossDataSource, "tables %v are located in %v", rt.singles, dataSources)
	}

	rc := &RouteContext{}
	for _, ds := range dataSources {
		unit := &RouteUnit{
			DataSource: RouteMapper{Logical: ds, Actual: ds},
			Tables:     append(identityMappers(located[ds]), identityMappers(rt.broadcasts)...),
		}
		rt.sortMappers(unit)
		rc.Units = append(rc.Units, unit)
	}
	return rc, nil
}

// attachSingles adds the single tables to the units routed by sharding tables.
// Without federation, all units must be on the data source of every single table.
func (rt *routing) attachSingles(rc *RouteContext) error {
	for _, it := range rt.singles {
		ds, ok := rt.locateSingle(it)
		if !ok {
			return errors.Wrapf(ErrTableNotFound, "cannot find the data source of table '%s'", it)
		}
		for _, unit := range rc.Units {
			if unit.DataSource.Actual == ds {
				unit.Tables = append(unit.Tables, RouteMapper{Logical: it, Actual: it})
				continue
			}
			if !rt.isFederated() {
				return errors.Wrapf(ErrSingleTableCrossDataSource,
					"single table '%s' on '%s' cannot be joined with the data source '%s'", it, ds, unit.DataSource.Actual)
			}
		}
	}
	return nil
}

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

package schema

import (
	"sort"
	"strings"
	"sync"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

var _ proto.Metadata = (*Catalog)(nil)

// Catalog is an in-memory registry of table metadata. A table with a data source is a single table,
// a table without one is a logical table whose indexes are registered for index resolution.
type Catalog struct {
	mutex   sync.RWMutex
	tables  map[string]*proto.TableMetadata
	indexes map[string][]string // index -> tables
}

func NewCatalog() *Catalog {
	return &Catalog{
		tables:  make(map[string]*proto.TableMetadata),
		indexes: make(map[string][]string),
	}
}

// Register adds or replaces the metadata of tables.
func (c *Catalog) Register(tables ...*proto.TableMetadata) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, it := range tables {
		if it == nil || len(it.Name) == 0 {
			return errors.Errorf("invalid table metadata: %+v", it)
		}
		name := strings.ToLower(it.Name)
		if exist, ok := c.tables[name]; ok {
			if exist.DataSource != it.DataSource {
				log.Warnf("single table '%s' moves from '%s' to '%s'", name, exist.DataSource, it.DataSource)
			}
			c.removeLocked(name)
		}
		c.tables[name] = it
		for _, idx := range it.Indexes {
			key := strings.ToLower(idx.Name)
			c.indexes[key] = append(c.indexes[key], name)
		}
	}
	return nil
}

// Remove removes the table, returns false if it doesn't exist.
func (c *Catalog) Remove(table string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.removeLocked(strings.ToLower(table))
}

func (c *Catalog) removeLocked(name string) bool {
	exist, ok := c.tables[name]
	if !ok {
		return false
	}
	delete(c.tables, name)
	for _, idx := range exist.Indexes {
		key := strings.ToLower(idx.Name)
		owners := c.indexes[key][:0]
		for _, it := range c.indexes[key] {
			if it != name {
				owners = append(owners, it)
			}
		}
		if len(owners) == 0 {
			delete(c.indexes, key)
		} else {
			c.indexes[key] = owners
		}
	}
	return true
}

func (c *Catalog) FindSingleTable(table string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if tm, ok := c.tables[strings.ToLower(table)]; ok && len(tm.DataSource) > 0 {
		return tm.DataSource, true
	}
	return "", false
}

// FindTableByIndex resolves the owner of the index, an index name shared by several tables is ambiguous.
func (c *Catalog) FindTableByIndex(index string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	owners := c.indexes[strings.ToLower(index)]
	if len(owners) != 1 {
		return "", false
	}
	return owners[0], true
}

// Tables returns the sorted names of all registered tables.
func (c *Catalog) Tables() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	ret := make([]string, 0, len(c.tables))
	for it := range c.tables {
		ret = append(ret, it)
	}
	sort.Strings(ret)
	return ret
}

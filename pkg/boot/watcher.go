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

package boot

import (
	"context"
	"strings"
)

import (
	"github.com/pkg/errors"

	"go.uber.org/atomic"

	"golang.org/x/exp/slices"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/algorithm"
	"github.com/arana-db/sharding-core/pkg/runtime/namespace"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

// Watcher applies configuration changes to a namespace.
type Watcher struct {
	started   atomic.Bool
	discovery Discovery
	registry  *algorithm.Registry
	ns        *namespace.Namespace
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewWatcher(discovery Discovery, registry *algorithm.Registry, ns *namespace.Namespace) *Watcher {
	return &Watcher{
		discovery: discovery,
		registry:  registry,
		ns:        ns,
		done:      make(chan struct{}),
	}
}

// Watch starts watching in background, it returns once the watch is set up.
func (d *Watcher) Watch(ctx context.Context) error {
	if !d.started.CAS(false, true) {
		return nil
	}

	ctx, d.cancel = context.WithCancel(ctx)

	ch, err := d.discovery.Watch(ctx)
	if err != nil {
		d.cancel()
		close(d.done)
		return errors.Wrap(err, "failed to watch sharding configuration")
	}

	go func() {
		defer close(d.done)
		for cfg := range ch {
			if err := d.onChange(cfg); err != nil {
				log.Errorf("[%s] handle configuration change failed: %v", d.ns.Name(), err)
			}
		}
	}()

	return nil
}

// Close stops watching and waits for the pending change.
func (d *Watcher) Close() error {
	if !d.started.Load() {
		return nil
	}
	d.cancel()
	<-d.done
	return nil
}

func (d *Watcher) onChange(cfg *config.Configuration) error {
	if !strings.EqualFold(cfg.Data.Database, d.ns.Name()) {
		return errors.Errorf("database cannot be renamed from '%s' to '%s'", d.ns.Name(), cfg.Data.Database)
	}

	ru, err := BuildShardingRule(cfg.Data, d.registry)
	if err != nil {
		return err
	}
	catalog, err := BuildCatalog(cfg.Data)
	if err != nil {
		return err
	}

	adds, removes := diffTables(d.ns.Rule(), ru)
	if len(adds) > 0 {
		log.Infof("[%s] TABLE-ADD: %s", d.ns.Name(), strings.Join(adds, ","))
	}
	if len(removes) > 0 {
		log.Infof("[%s] TABLE-DEL: %s", d.ns.Name(), strings.Join(removes, ","))
	}

	if err = d.ns.EnqueueCommand(namespace.UpdateMetadata(catalog)); err != nil {
		return errors.WithStack(err)
	}
	if err = d.ns.EnqueueCommand(namespace.UpdateRule(ru)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// diffTables returns the sorted sharding tables added and removed by the next rule.
func diffTables(prev, next *rule.ShardingRule) (adds, removes []string) {
	names := func(ru *rule.ShardingRule) []string {
		if ru == nil {
			return nil
		}
		ret := make([]string, 0, len(ru.TableRules()))
		for _, it := range ru.TableRules() {
			ret = append(ret, it.LogicTable())
		}
		slices.Sort(ret)
		return ret
	}

	before, after := names(prev), names(next)
	for _, it := range after {
		if _, ok := slices.BinarySearch(before, it); !ok {
			adds = append(adds, it)
		}
	}
	for _, it := range before {
		if _, ok := slices.BinarySearch(after, it); !ok {
			removes = append(removes, it)
		}
	}
	return
}

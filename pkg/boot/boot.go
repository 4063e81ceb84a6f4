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
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/runtime/algorithm"
	"github.com/arana-db/sharding-core/pkg/runtime/namespace"
	"github.com/arana-db/sharding-core/pkg/trace"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

// NewRegistry creates an algorithm registry with all builtin algorithms.
func NewRegistry() (*algorithm.Registry, error) {
	r := algorithm.NewRegistry()
	if err := algorithm.RegisterBuiltins(r); err != nil {
		return nil, errors.WithStack(err)
	}
	return r, nil
}

// Boot loads the configuration from the discovery, then builds and registers the namespace.
// A nil registry means the builtin algorithms only.
func Boot(ctx context.Context, provider Discovery, registry *algorithm.Registry) (*namespace.Namespace, error) {
	if err := provider.Init(ctx); err != nil {
		return nil, err
	}

	cfg, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	log.Init(cfg.Logging)

	if cfg.Trace != nil {
		if err = trace.Initialize(ctx, cfg.Trace); err != nil {
			return nil, err
		}
	}

	if registry == nil {
		if registry, err = NewRegistry(); err != nil {
			return nil, err
		}
	}

	ns, err := BuildNamespace(cfg.Data, registry)
	if err != nil {
		return nil, err
	}

	if err = namespace.Register(cfg.Data.Tenant, ns); err != nil {
		_ = ns.Close()
		return nil, err
	}

	log.Infof("[%s] register namespace %s successfully", cfg.Data.Tenant, ns.Name())
	return ns, nil
}

// BuildNamespace builds an unregistered namespace of the configuration.
func BuildNamespace(data *config.Data, registry *algorithm.Registry) (*namespace.Namespace, error) {
	ru, err := BuildShardingRule(data, registry)
	if err != nil {
		return nil, err
	}
	catalog, err := BuildCatalog(data)
	if err != nil {
		return nil, err
	}

	cmds := []namespace.Command{
		namespace.UpdateMetadata(catalog),
		namespace.UpdateRule(ru),
	}
	if data.PlanCache != nil {
		cmds = append(cmds, namespace.PlanCacheSize(data.PlanCache.Size))
	}

	ns, err := namespace.New(data.Database, cmds...)
	if err != nil {
		return nil, errors.Wrapf(err, "build namespace %s failed", data.Database)
	}
	return ns, nil
}

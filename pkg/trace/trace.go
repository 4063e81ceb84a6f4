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

package trace

import (
	"context"
	"sync"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/proto/hint"
)

const (
	Service              = "sharding-core"
	Jaeger  ProviderType = "jaeger"
)

type ProviderType string

var (
	mu              sync.RWMutex
	providers       = make(map[ProviderType]Provider, 8)
	currentProvider Provider
	once            sync.Once
)

// Provider installs the global tracer provider and restores the caller's trace context.
type Provider interface {
	Initialize(ctx context.Context, traceCfg *config.Trace) error
	// Extract returns the context carrying the remote span of TRACE hint.
	Extract(ctx context.Context, hints []*hint.Hint) (context.Context, bool)
}

func RegisterProviders(pType ProviderType, p Provider) {
	mu.Lock()
	defer mu.Unlock()
	providers[pType] = p
}

// Initialize initializes the provider of the trace type, only the first call takes effect.
func Initialize(ctx context.Context, traceCfg *config.Trace) error {
	var err error
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		v, ok := providers[ProviderType(traceCfg.Type)]
		if !ok {
			err = errors.Errorf("not supported %s trace provider", traceCfg.Type)
			return
		}
		if err = v.Initialize(ctx, traceCfg); err != nil {
			return
		}
		currentProvider = v
	})
	return err
}

// Extract restores the trace context from hints, returns false if tracing is not initialized.
func Extract(ctx context.Context, hints []*hint.Hint) (context.Context, bool) {
	if !hint.Contains(hint.TypeTrace, hints) {
		return ctx, false
	}
	mu.RLock()
	p := currentProvider
	mu.RUnlock()
	if p == nil {
		return ctx, false
	}
	return p.Extract(ctx, hints)
}

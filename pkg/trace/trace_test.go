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
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/proto/hint"
)

type fakeKey struct{}

type fakeProvider struct {
	initialized int
}

func (f *fakeProvider) Initialize(_ context.Context, _ *config.Trace) error {
	f.initialized++
	return nil
}

func (f *fakeProvider) Extract(ctx context.Context, _ []*hint.Hint) (context.Context, bool) {
	return context.WithValue(ctx, fakeKey{}, true), true
}

func reset() {
	once = sync.Once{}
	currentProvider = nil
}

func TestUseTraceProvider(t *testing.T) {
	defer reset()

	ctx := context.Background()
	traceHint, err := hint.Parse("trace(00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01)")
	assert.NoError(t, err)
	hints := []*hint.Hint{traceHint}

	// not initialized yet
	_, ok := Extract(ctx, hints)
	assert.False(t, ok)

	err = Initialize(ctx, &config.Trace{Type: "fake_provider_2", Address: "test_address"})
	assert.Error(t, err)
	reset()

	p := &fakeProvider{}
	RegisterProviders("fake_provider", p)
	assert.Equal(t, p, providers["fake_provider"])

	cfg := &config.Trace{Type: "fake_provider", Address: "test_address"}
	assert.NoError(t, Initialize(ctx, cfg))
	assert.NoError(t, Initialize(ctx, cfg))
	assert.Equal(t, 1, p.initialized)

	tctx, ok := Extract(ctx, hints)
	assert.True(t, ok)
	assert.Equal(t, true, tctx.Value(fakeKey{}))

	fullScan, err := hint.Parse("fullscan")
	assert.NoError(t, err)
	tctx, ok = Extract(ctx, []*hint.Hint{fullScan})
	assert.False(t, ok)
	assert.Equal(t, ctx, tctx)
}

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

package algorithm

import (
	"io"
	"sort"
	"strings"
	"sync"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cast"

	"go.uber.org/multierr"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/rule"
)

// Builtin algorithm types.
const (
	TypeMod           = "MOD"
	TypeHashMod       = "HASH_MOD"
	TypeBoundaryRange = "BOUNDARY_RANGE"
	TypeInline        = "INLINE"
	TypeComplexInline = "COMPLEX_INLINE"
	TypeHintInline    = "HINT_INLINE"
)

// ErrUnknownAlgorithm is returned when no factory is registered for the type.
var ErrUnknownAlgorithm = errors.New("unknown sharding algorithm")

func IsUnknownAlgorithmErr(err error) bool {
	return errors.Is(err, ErrUnknownAlgorithm)
}

// Props are the configured properties of an algorithm.
type Props map[string]string

// Int returns the property as an int.
func (p Props) Int(key string) (int, bool, error) {
	v, ok := p[key]
	if !ok || len(strings.TrimSpace(v)) == 0 {
		return 0, false, nil
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		return 0, true, errors.Wrapf(err, "invalid property '%s'", key)
	}
	return n, true, nil
}

// Bool returns the property as a bool, missing means false.
func (p Props) Bool(key string) bool {
	return cast.ToBool(strings.TrimSpace(p[key]))
}

// Factory creates a configured algorithm.
type Factory func(props Props) (rule.Algorithm, error)

// Registry maps algorithm type names to factories.
// It is built once at startup, Close releases resources held by created algorithms.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	created   []rule.Algorithm
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory for the type, the type name is case-insensitive.
func (r *Registry) Register(typ string, factory Factory) error {
	key := strings.ToUpper(strings.TrimSpace(typ))
	if len(key) == 0 || factory == nil {
		return errors.New("register sharding algorithm: empty type or nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return errors.Errorf("sharding algorithm %s has been registered already", key)
	}
	r.factories[key] = factory
	return nil
}

// New creates an algorithm of the type.
func (r *Registry) New(typ string, props Props) (rule.Algorithm, error) {
	key := strings.ToUpper(strings.TrimSpace(typ))

	r.mu.Lock()
	factory, ok := r.factories[key]
	r.mu.Unlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "type %s", typ)
	}

	algorithm, err := factory(props)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create sharding algorithm %s", key)
	}

	r.mu.Lock()
	r.created = append(r.created, algorithm)
	r.mu.Unlock()

	return algorithm, nil
}

// Types returns all registered types in order.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]string, 0, len(r.factories))
	for k := range r.factories {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Close closes all created algorithms which hold resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	created := r.created
	r.created = nil
	r.mu.Unlock()

	var err error
	for _, it := range created {
		if c, ok := it.(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}

var _builtins = map[string]Factory{
	TypeMod:           NewMod,
	TypeHashMod:       NewHashMod,
	TypeBoundaryRange: NewBoundaryRange,
	TypeInline:        NewInline,
	TypeComplexInline: NewComplexInline,
	TypeHintInline:    NewHintInline,
}

// RegisterBuiltins registers all builtin algorithms.
func RegisterBuiltins(r *Registry) error {
	var err error
	for k, v := range _builtins {
		err = multierr.Append(err, r.Register(k, v))
	}
	return err
}

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

package context

import (
	"context"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto/hint"
)

type (
	keySql        struct{}
	keySchema     struct{}
	keyTenant     struct{}
	keyHints      struct{}
	keyHintValues struct{}
)

// WithSQL binds the original sql.
func WithSQL(ctx context.Context, sql string) context.Context {
	return context.WithValue(ctx, keySql{}, sql)
}

// WithTenant binds the tenant.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, keyTenant{}, tenant)
}

func WithSchema(ctx context.Context, data string) context.Context {
	return context.WithValue(ctx, keySchema{}, data)
}

// WithHints binds the hints of current statement, the sharding values of hints
// are collected once and shared by all hint strategies.
func WithHints(ctx context.Context, hints []*hint.Hint) context.Context {
	ctx = context.WithValue(ctx, keyHints{}, hints)
	return context.WithValue(ctx, keyHintValues{}, hint.FromHints(hints))
}

// WithHintValues binds the sharding values of hint strategies directly.
func WithHintValues(ctx context.Context, values *hint.Values) context.Context {
	return context.WithValue(ctx, keyHintValues{}, values)
}

// Tenant extracts the tenant.
func Tenant(ctx context.Context) string {
	db, ok := ctx.Value(keyTenant{}).(string)
	if !ok {
		return ""
	}
	return db
}

// SQL returns the original sql string.
func SQL(ctx context.Context) string {
	if sql, ok := ctx.Value(keySql{}).(string); ok {
		return sql
	}
	return ""
}

func Schema(ctx context.Context) string {
	if schema, ok := ctx.Value(keySchema{}).(string); ok {
		return schema
	}
	return ""
}

// Hints extracts the hints.
func Hints(ctx context.Context) []*hint.Hint {
	hints, ok := ctx.Value(keyHints{}).([]*hint.Hint)
	if !ok {
		return nil
	}
	return hints
}

// HintValues extracts the sharding values of hints, returns nil if absent.
func HintValues(ctx context.Context) *hint.Values {
	values, ok := ctx.Value(keyHintValues{}).(*hint.Values)
	if !ok {
		return nil
	}
	return values
}

// IsFullScanAllowed returns true if the FULLSCAN hint is present.
func IsFullScanAllowed(ctx context.Context) bool {
	return hint.Contains(hint.TypeFullScan, Hints(ctx))
}

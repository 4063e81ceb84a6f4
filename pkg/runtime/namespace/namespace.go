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

package namespace

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

import (
	"github.com/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"go.uber.org/atomic"
)

import (
	"github.com/arana-db/sharding-core/pkg/metrics"
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/proto/hint"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	rcontext "github.com/arana-db/sharding-core/pkg/runtime/context"
	"github.com/arana-db/sharding-core/pkg/runtime/rewrite"
	"github.com/arana-db/sharding-core/pkg/runtime/route"
	"github.com/arana-db/sharding-core/pkg/trace"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

var Tracer = otel.Tracer("namespace")

// ErrNoRule is returned when a namespace is used before any rule is set.
var ErrNoRule = errors.New("namespace: no rule found")

func IsNoRuleErr(err error) bool {
	return errors.Is(err, ErrNoRule)
}

var _namespaces sync.Map

// Load loads a namespace, return nil if no namespace found.
func Load(tenant, namespace string) *Namespace {
	exist, ok := _namespaces.Load(getLoadKey(tenant, namespace))
	if !ok {
		return nil
	}
	return exist.(*Namespace)
}

// Register registers a namespace.
func Register(tenant string, namespace *Namespace) error {
	name := namespace.Name()
	if _, loaded := _namespaces.LoadOrStore(getLoadKey(tenant, name), namespace); loaded {
		return errors.Errorf("cannot register conflict namespace: tenant=%s, name=%s", tenant, name)
	}
	return nil
}

// List lists all namespace.
func List() []*Namespace {
	ret := make([]*Namespace, 0, 4)
	_namespaces.Range(func(_, value interface{}) bool {
		ret = append(ret, value.(*Namespace))
		return true
	})
	return ret
}

// Unregister unregisters a namespace.
func Unregister(tenant, namespace string) error {
	removed, loaded := _namespaces.LoadAndDelete(getLoadKey(tenant, namespace))
	if !loaded {
		return nil
	}
	return removed.(*Namespace).Close()
}

type (
	// Namespace represents a logical database with its sharding rule.
	// The rule is replaced as a whole, in-flight calls keep the snapshot they started with.
	Namespace struct {
		sync.Mutex

		closed atomic.Bool

		name string // the name of Namespace

		current atomic.Value  // *snapshot
		version atomic.Uint64 // version of the latest rule

		metadata proto.Metadata

		cacheSize int
		cache     *planCache

		cmdMu sync.RWMutex  // guards sending to cmds against closing it
		cmds  chan Command  // command queue
		done  chan struct{} // done notify
	}

	// Command represents the command to control Namespace.
	Command func(ns *Namespace) error

	// Plan is the route and rewrite result of a statement under one rule version.
	Plan struct {
		Version uint64
		Route   *route.RouteContext
		Units   []*rewrite.ExecutionUnit
	}

	snapshot struct {
		version uint64
		rule    *rule.ShardingRule
		router  *route.Router
		engine  *rewrite.Engine
	}
)

// New creates a Namespace.
func New(name string, commands ...Command) (*Namespace, error) {
	ns := &Namespace{
		name: name,
		cmds: make(chan Command, 1),
		done: make(chan struct{}),
	}
	ns.current.Store(&snapshot{}) // init empty snapshot

	for _, cmd := range commands {
		if err := cmd(ns); err != nil {
			return nil, err
		}
	}

	cache, err := newPlanCache(ns.cacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create plan cache of namespace '%s'", name)
	}
	ns.cache = cache

	go ns.loopCmds()

	return ns, nil
}

// Name returns the name of namespace.
func (ns *Namespace) Name() string {
	return ns.name
}

// Rule returns the current sharding rule, nil if absent.
func (ns *Namespace) Rule() *rule.ShardingRule {
	return ns.snapshot().rule
}

// Version returns the version of the current rule, it increases on every swap.
func (ns *Namespace) Version() uint64 {
	return ns.snapshot().version
}

// Metadata returns the metadata used to locate single tables.
func (ns *Namespace) Metadata() proto.Metadata {
	ns.Lock()
	defer ns.Unlock()
	return ns.metadata
}

// SwapRule replaces the rule and returns the new version.
func (ns *Namespace) SwapRule(ru *rule.ShardingRule) uint64 {
	ns.Lock()
	defer ns.Unlock()
	return ns.swap(ru)
}

// swap must be called with the lock held.
func (ns *Namespace) swap(ru *rule.ShardingRule) uint64 {
	next := &snapshot{
		version: ns.version.Inc(),
		rule:    ru,
	}
	if ru != nil {
		next.router = route.NewRouter(ru, ns.metadata)
		next.engine = rewrite.NewEngine(ru)
	}
	ns.current.Store(next)

	log.Infof("[%s] swap rule to version %d", ns.name, next.version)
	return next.version
}

func (ns *Namespace) snapshot() *snapshot {
	return ns.current.Load().(*snapshot)
}

// Route routes the statement with the current rule.
func (ns *Namespace) Route(ctx context.Context, stmt ast.Statement, params []interface{}) (*route.RouteContext, error) {
	s := ns.snapshot()
	if s.router == nil {
		return nil, errors.Wrapf(ErrNoRule, "cannot route in namespace '%s'", ns.name)
	}
	return s.router.Route(ctx, stmt, params)
}

// Plan routes and rewrites the statement with the current rule.
// Plans of statements with sql text are cached by rule version, sql, parameters and hints.
func (ns *Namespace) Plan(ctx context.Context, stmt ast.Statement, params []interface{}) (plan *Plan, err error) {
	s := ns.snapshot()
	if s.router == nil {
		return nil, errors.Wrapf(ErrNoRule, "cannot plan in namespace '%s'", ns.name)
	}
	if stmt == nil {
		return nil, errors.Wrap(ast.ErrUnknownStatement, "cannot plan nil statement")
	}

	if tctx, ok := trace.Extract(ctx, rcontext.Hints(ctx)); ok {
		ctx = tctx
	}

	ctx, span := Tracer.Start(ctx, "Plan")
	span.SetAttributes(
		attribute.Key("namespace").String(ns.name),
		attribute.Key("rule.version").Int64(int64(s.version)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	build := func() (*Plan, error) {
		return s.plan(ctx, stmt, params)
	}

	sql := stmt.Text()
	if len(sql) == 0 {
		return build()
	}

	start := time.Now()
	plan, hit, err := ns.cache.load(planKey(s.version, sql, params, hintsOf(ctx)), build)
	if err != nil {
		return nil, err
	}
	metrics.RecordPlanCache(hit)
	span.SetAttributes(attribute.Key("plan.cached").Bool(hit))
	log.DebugfWithLogType(log.RouteLog, "[%s] plan of '%s' in %s, cached=%t", ns.name, sql, time.Since(start), hit)

	return plan, nil
}

func (s *snapshot) plan(ctx context.Context, stmt ast.Statement, params []interface{}) (*Plan, error) {
	rc, err := s.router.Route(ctx, stmt, params)
	if err != nil {
		return nil, err
	}
	units, err := s.engine.Rewrite(ctx, stmt, rc, params)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Version: s.version,
		Route:   rc,
		Units:   units,
	}, nil
}

// CachedPlans returns the count of cached plans.
func (ns *Namespace) CachedPlans() int {
	return ns.cache.len()
}

// EnqueueCommand enqueues the next command, it will be executed async.
func (ns *Namespace) EnqueueCommand(cmd Command) error {
	ns.cmdMu.RLock()
	defer ns.cmdMu.RUnlock()
	if ns.closed.Load() {
		return io.EOF
	}
	ns.cmds <- cmd
	return nil
}

// Close closes namespace.
func (ns *Namespace) Close() error {
	ns.cmdMu.Lock()
	if !ns.closed.CAS(false, true) {
		ns.cmdMu.Unlock()
		return nil
	}
	close(ns.cmds)
	ns.cmdMu.Unlock()

	<-ns.done

	ns.cache.purge()

	log.Infof("[%s] close namespace successfully", ns.name)

	return nil
}

func (ns *Namespace) loopCmds() {
	defer close(ns.done)
	for cmd := range ns.cmds {
		if err := cmd(ns); err != nil {
			log.Errorf("[%s] failed to execute command: %v", ns.name, err)
		}
	}
}

// hintsOf renders the hints of the context which may change a plan.
func hintsOf(ctx context.Context) string {
	var sb strings.Builder
	for _, it := range rcontext.Hints(ctx) {
		if it.Type == hint.TypeTrace {
			continue
		}
		sb.WriteString(it.String())
		sb.WriteByte(';')
	}
	if hv := rcontext.HintValues(ctx); !hv.IsEmpty() {
		sb.WriteString(hv.String())
	}
	return sb.String()
}

func getLoadKey(tenant, namespace string) string {
	var sb strings.Builder
	sb.Grow(len(tenant) + len(namespace) + 1)
	sb.WriteString(tenant)
	sb.WriteByte(':')
	sb.WriteString(namespace)
	return sb.String()
}

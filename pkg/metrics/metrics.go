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

package metrics

import (
	"time"
)

import (
	"github.com/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"

	"go.uber.org/multierr"
)

const (
	ResultOK    = "ok"
	ResultError = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	RouteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharding",
		Subsystem: "router",
		Name:      "route_total",
		Help:      "counter of routed statements by sql type and result.",
	}, []string{"sql_type", "result"})

	RouteUnits = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharding",
		Subsystem: "router",
		Name:      "route_units",
		Help:      "histogram of route units produced by one statement.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 ~ 2048
	})

	RouteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharding",
		Subsystem: "router",
		Name:      "duration_seconds",
		Help:      "histogram of processing time (s) in routing.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20), // 10us ~ 5s
	})

	RewriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharding",
		Subsystem: "rewriter",
		Name:      "duration_seconds",
		Help:      "histogram of processing time (s) in rewriting.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20),
	})

	PlanCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharding",
		Subsystem: "plan_cache",
		Name:      "plan_cache_hits_total",
		Help:      "counter of plan cache lookups by result.",
	}, []string{"result"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{RouteTotal, RouteUnits, RouteDuration, RewriteDuration, PlanCacheHits}
}

// Register registers all collectors, the ones registered before are skipped.
func Register(r prometheus.Registerer) error {
	var merr error
	for _, it := range collectors() {
		if err := r.Register(it); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			merr = multierr.Append(merr, err)
		}
	}
	return merr
}

// RecordRoute records the result of routing one statement.
func RecordRoute(sqlType string, units int, cost time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	RouteTotal.WithLabelValues(sqlType, result).Inc()
	RouteDuration.Observe(cost.Seconds())
	if err == nil {
		RouteUnits.Observe(float64(units))
	}
}

func RecordRewrite(cost time.Duration) {
	RewriteDuration.Observe(cost.Seconds())
}

func RecordPlanCache(hit bool) {
	if hit {
		PlanCacheHits.WithLabelValues(CacheHit).Inc()
	} else {
		PlanCacheHits.WithLabelValues(CacheMiss).Inc()
	}
}

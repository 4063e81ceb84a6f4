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
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/sharding-core/pkg/proto"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

// UpdateRule returns a command to replace the rule.
func UpdateRule(ru *rule.ShardingRule) Command {
	return func(ns *Namespace) error {
		ns.Lock()
		defer ns.Unlock()
		ns.swap(ru)
		return nil
	}
}

// UpdateMetadata returns a command to replace the metadata, the current rule is re-published
// with a new version so that cached plans of the old metadata are not used any more.
func UpdateMetadata(metadata proto.Metadata) Command {
	return func(ns *Namespace) error {
		ns.Lock()
		defer ns.Unlock()

		ns.metadata = metadata
		if ru := ns.snapshot().rule; ru != nil {
			ns.swap(ru)
		}

		log.Infof("[%s] update metadata successfully", ns.name)
		return nil
	}
}

// PlanCacheSize returns a command to set the capacity of plan cache, it works only on New.
func PlanCacheSize(size int) Command {
	return func(ns *Namespace) error {
		if ns.cache != nil {
			return errors.Errorf("[%s] plan cache size can only be set on creation", ns.name)
		}
		if size < 0 {
			return errors.Errorf("[%s] invalid plan cache size %d", ns.name, size)
		}
		ns.cacheSize = size
		return nil
	}
}

// PurgePlans returns a command to drop all cached plans.
func PurgePlans() Command {
	return func(ns *Namespace) error {
		if ns.cache == nil {
			return nil
		}
		ns.cache.purge()
		log.Infof("[%s] purge cached plans successfully", ns.name)
		return nil
	}
}

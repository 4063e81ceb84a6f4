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
	"os"
	"path/filepath"
)

import (
	"github.com/cespare/xxhash/v2"

	"github.com/fsnotify/fsnotify"

	"github.com/pkg/errors"

	"go.uber.org/atomic"
)

import (
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/util/log"
)

var _ Discovery = (*fileDiscovery)(nil)

// Discovery provides the sharding configuration.
type Discovery interface {
	// Init initializes the discovery.
	Init(ctx context.Context) error
	// Load loads the current configuration.
	Load(ctx context.Context) (*config.Configuration, error)
	// Watch sends the configuration on every change until the context is done.
	Watch(ctx context.Context) (<-chan *config.Configuration, error)
}

type fileDiscovery struct {
	path     string
	revision atomic.Uint64
}

// NewDiscovery creates a Discovery over a yaml file.
func NewDiscovery(path string) Discovery {
	return &fileDiscovery{path: filepath.Clean(path)}
}

func (fp *fileDiscovery) Init(_ context.Context) error {
	if !config.IsYaml(fp.path) {
		return errors.Errorf("invalid config file format: %s", filepath.Ext(fp.path))
	}
	if _, err := os.Stat(fp.path); err != nil {
		return errors.Wrapf(err, "cannot find config file %s", fp.path)
	}
	return nil
}

func (fp *fileDiscovery) Load(_ context.Context) (*config.Configuration, error) {
	cfg, _, err := fp.read()
	return cfg, err
}

func (fp *fileDiscovery) read() (*config.Configuration, uint64, error) {
	content, err := os.ReadFile(fp.path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to load config")
	}
	revision := xxhash.Sum64(content)
	cfg, err := config.Parse(content)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to parse config %s", fp.path)
	}
	fp.revision.Store(revision)
	return cfg, revision, nil
}

// Watch watches the directory of the file, since editors often replace the file instead of writing it.
func (fp *fileDiscovery) Watch(ctx context.Context) (<-chan *config.Configuration, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err = w.Add(filepath.Dir(fp.path)); err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", fp.path)
	}

	ch := make(chan *config.Configuration, 1)
	go func() {
		defer func() {
			_ = w.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Errorf("watch config %s failed: %v", fp.path, err)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != fp.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				prev := fp.revision.Load()
				cfg, revision, err := fp.read()
				if err != nil {
					log.Errorf("skip changed config: %v", err)
					continue
				}
				if revision == prev {
					continue
				}
				select {
				case ch <- cfg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

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

package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

import (
	"github.com/creasty/defaults"

	"github.com/go-playground/validator/v10"

	"github.com/pkg/errors"

	"gopkg.in/yaml.v3"
)

import (
	"github.com/arana-db/sharding-core/pkg/util/log"
)

// Decoder decodes configuration.
type Decoder struct {
	reader io.Reader
}

// NewDecoder creates a Decoder from a reader.
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{reader: reader}
}

// Decode decodes the configuration, fills the default values and validates it.
func (d *Decoder) Decode(cfg *Configuration) error {
	dec := yaml.NewDecoder(d.reader)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.WithStack(err)
	}
	if err := fillDefaults(cfg); err != nil {
		return err
	}
	return Validate(cfg)
}

// Load loads the configuration from file path.
func Load(path string) (*Configuration, error) {
	if !IsYaml(path) {
		return nil, errors.Errorf("invalid config file format: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}
	defer func() {
		_ = f.Close()
	}()

	var cfg Configuration
	if err = NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config %s", path)
	}
	return &cfg, nil
}

// Parse parses the configuration from yaml content.
func Parse(content []byte) (*Configuration, error) {
	var cfg Configuration
	if err := NewDecoder(bytes.NewReader(content)).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// Validate validates the input configuration.
func Validate(cfg *Configuration) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if cfg.Kind != KindShardingRule {
		return errors.Errorf("invalid configuration: unsupported kind '%s'", cfg.Kind)
	}
	return nil
}

// IsYaml returns true if the file has a yaml extension.
func IsYaml(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func fillDefaults(cfg *Configuration) error {
	if cfg.Logging == nil {
		cfg.Logging = log.DefaultConfig()
	}
	if cfg.Data != nil {
		if cfg.Data.Props == nil {
			cfg.Data.Props = &Props{}
		}
		if cfg.Data.PlanCache == nil {
			cfg.Data.PlanCache = &PlanCache{}
		}
	}
	if err := defaults.Set(cfg); err != nil {
		return errors.Wrap(err, "failed to set default values of config")
	}
	return nil
}

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

package constants

import (
	"os"
	"path/filepath"
)

// Environments
const (
	EnvConfigPath = "SHARDING_CONFIG_PATH" // config file path, eg: /etc/sharding/sharding.yaml
)

const ConfigPathKey = "config"

var _configNames = [...]string{"sharding.yaml", "sharding.yml"}

// GetConfigSearchPathList returns the default search path list of configuration.
func GetConfigSearchPathList() []string {
	var dirs []string
	dirs = append(dirs, ".", "./conf")
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".sharding"))
	}
	dirs = append(dirs, "/etc/sharding")
	return dirs
}

// FindConfigPath returns the config path from the environment, or the first existing
// config file in the search path list.
func FindConfigPath() (string, bool) {
	if path := os.Getenv(EnvConfigPath); len(path) > 0 {
		return path, true
	}
	for _, dir := range GetConfigSearchPathList() {
		for _, name := range _configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

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

package cmds

import (
	"sync"
)

import (
	"github.com/spf13/cobra"
)

var (
	_handlersMu sync.Mutex
	_handlers   []func(root *cobra.Command)
)

// Handle registers a handler which attaches sub commands to the root command.
func Handle(h func(root *cobra.Command)) {
	_handlersMu.Lock()
	defer _handlersMu.Unlock()
	_handlers = append(_handlers, h)
}

// Bind applies all registered handlers to the root command.
func Bind(root *cobra.Command) {
	_handlersMu.Lock()
	defer _handlersMu.Unlock()
	for _, h := range _handlers {
		h(root)
	}
}

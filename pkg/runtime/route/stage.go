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

package route

const (
	StageStart Stage = iota
	StageTablesResolved
	StageConditionsExtracted
	StageRouted
	StageValidated
)

var _stageNames = [...]string{
	StageStart:               "Start",
	StageTablesResolved:      "TablesResolved",
	StageConditionsExtracted: "ConditionsExtracted",
	StageRouted:              "Routed",
	StageValidated:           "Validated",
}

// Stage is the progress of routing one statement.
type Stage uint8

func (s Stage) String() string {
	if int(s) >= len(_stageNames) {
		return "Unknown"
	}
	return _stageNames[s]
}

// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package experiment

// State of a trial.
type State int

// Trial states in order of appearance.
const (
	StateInit State = iota
	StateProvisioning
	StateHealthy
	StateLoadRunning
	StateStartFailed
	StateSuccess
	StateThresholdFail
	StateFailed
	StateTeardown
	StateDone
)

var stateNames = map[State]string{
	StateInit:          "INIT",
	StateProvisioning:  "PROVISIONING",
	StateHealthy:       "HEALTHY",
	StateLoadRunning:   "LOAD_RUNNING",
	StateStartFailed:   "START_FAILED",
	StateSuccess:       "SUCCESS",
	StateThresholdFail: "THRESHOLD_FAIL",
	StateFailed:        "FAILED",
	StateTeardown:      "TEARDOWN",
	StateDone:          "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

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

import (
	"github.com/AndresRojas1512/marketstat-bench/pkg/report"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
)

// Classify returns status of a trial whose load run finished with outcome.
//
// A parseable artifact makes the trial scorable whatever the exit status:
// it is THRESHOLD_FAIL when the error rate reaches errorBound, or when the
// tool reported a violation and policy is ToolAuthoritative, and SUCCESS
// otherwise. Without an artifact a crashed tool gives CRASHED and a tool
// that exited on its own gives FAILED.
func Classify(outcome workloads.RunOutcome, errorBound float64, policy Policy) (report.Status, Kind) {
	if outcome.Result != nil {
		if policy == ToolAuthoritative && outcome.Status == workloads.THRESHOLD_VIOLATION {
			return report.StatusThresholdFail, ThresholdViolation
		}
		if outcome.Result.ErrorRate >= errorBound {
			return report.StatusThresholdFail, ThresholdViolation
		}
		return report.StatusSuccess, KindNone
	}

	if outcome.Status == workloads.CRASH {
		return report.StatusCrashed, LoadToolCrash
	}
	return report.StatusFailed, Unclassified
}

// stateOf returns state a loaded trial ends in.
func stateOf(status report.Status) State {
	switch status {
	case report.StatusSuccess:
		return StateSuccess
	case report.StatusThresholdFail:
		return StateThresholdFail
	}
	return StateFailed
}

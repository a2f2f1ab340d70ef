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
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the class of a trial failure.
type Kind int

// Failure kinds. Every failure of a trial is exactly one of them.
const (
	KindNone Kind = iota
	// StartupFailure means the stack did not start or never became ready.
	StartupFailure
	// LoadToolCrash means the load generator failed without an artifact.
	LoadToolCrash
	// ThresholdViolation means the measurement is valid but not acceptable.
	ThresholdViolation
	// MetricsUnavailable means telemetry returned no data. Never fatal.
	MetricsUnavailable
	// InfrastructureFailure aborts the whole campaign.
	InfrastructureFailure
	// Unclassified is any other failure. Such trials are FAILED.
	Unclassified
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case StartupFailure:
		return "StartupFailure"
	case LoadToolCrash:
		return "LoadToolCrash"
	case ThresholdViolation:
		return "ThresholdViolation"
	case MetricsUnavailable:
		return "MetricsUnavailable"
	case InfrastructureFailure:
		return "InfrastructureFailure"
	case Unclassified:
		return "Unclassified"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TrialError is an error of known kind.
type TrialError struct {
	Kind Kind
	Err  error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Cause returns the underlying error.
func (e *TrialError) Cause() error {
	return e.Err
}

// Unwrap returns the underlying error.
func (e *TrialError) Unwrap() error {
	return e.Err
}

func newTrialError(kind Kind, err error) *TrialError {
	return &TrialError{Kind: kind, Err: err}
}

// KindOf returns kind carried by err. Nil error is KindNone, errors of
// unknown origin are Unclassified.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var trialErr *TrialError
	if errors.As(err, &trialErr) {
		return trialErr.Kind
	}
	return Unclassified
}

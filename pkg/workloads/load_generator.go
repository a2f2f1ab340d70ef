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

// Package workloads drives the benchmarked instances with an external load
// generator.
package workloads

import (
	"context"

	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
)

// ExitStatus is the way the load generator ended.
type ExitStatus int

const (
	// NORMAL means the tool ran and all its thresholds passed.
	NORMAL ExitStatus = iota
	// THRESHOLD_VIOLATION means the tool's own performance gate failed. The
	// artifact is still complete.
	THRESHOLD_VIOLATION
	// CRASH means the tool failed or could not be started.
	CRASH
)

func (s ExitStatus) String() string {
	switch s {
	case NORMAL:
		return "NORMAL"
	case THRESHOLD_VIOLATION:
		return "THRESHOLD_VIOLATION"
	case CRASH:
		return "CRASH"
	}
	return "UNKNOWN"
}

// Latency holds request duration distribution in milliseconds.
type Latency struct {
	Avg float64
	P50 float64
	P75 float64
	P90 float64
	P95 float64
	P99 float64
}

// LoadRunResult is what a parseable artifact tells about a load run.
type LoadRunResult struct {
	// Throughput in requests per second.
	Throughput float64
	Latency    Latency
	// ErrorRate is a fraction of failed requests in [0, 1].
	ErrorRate float64
}

// Target identifies what to run against an instance.
type Target struct {
	// Script is the load scenario, as seen by the load generator.
	Script string
	// Iteration of the campaign, used to name the artifact.
	Iteration int
}

// RunOutcome describes a finished load run.
type RunOutcome struct {
	Status   ExitStatus
	ExitCode int
	// Result is nil when no parseable artifact was produced.
	Result       *LoadRunResult
	ArtifactPath string
	// Err explains why Result is missing or why the tool crashed.
	Err error
}

// Invoker runs the load generator against an instance and blocks until it exits.
type Invoker interface {
	Run(ctx context.Context, handle *stack.Handle, target Target) RunOutcome
}

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

// Package experiment runs a benchmark campaign: every configured
// implementation is provisioned, probed, loaded, measured, reported and torn
// down once per iteration.
package experiment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
)

// Policy decides whether the load generator's own threshold verdict overrides
// the error rate bound.
type Policy int

const (
	// BoundOnly classifies by the error rate bound alone.
	BoundOnly Policy = iota
	// ToolAuthoritative classifies a reported threshold violation as
	// THRESHOLD_FAIL even when the error rate is within bound.
	ToolAuthoritative
)

// Policy names accepted by ParsePolicy.
const (
	BoundOnlyName         = "bound_only"
	ToolAuthoritativeName = "tool_authoritative"
)

func (p Policy) String() string {
	switch p {
	case BoundOnly:
		return BoundOnlyName
	case ToolAuthoritative:
		return ToolAuthoritativeName
	}
	return "unknown"
}

// ParsePolicy returns policy of given name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case BoundOnlyName:
		return BoundOnly, nil
	case ToolAuthoritativeName:
		return ToolAuthoritative, nil
	}
	return BoundOnly, errors.Errorf("unknown threshold policy %q (expected %s or %s)", name, BoundOnlyName, ToolAuthoritativeName)
}

// DefaultErrorBound is the error rate at and above which a trial is THRESHOLD_FAIL.
const DefaultErrorBound = 0.05

// Config of a campaign. It is copied by New and never changed afterwards.
type Config struct {
	CampaignID      string
	Implementations []stack.ImplementationConfig
	Iterations      int
	// ErrorBound is a fraction in (0, 1].
	ErrorBound float64
	Policy     Policy
	// Parallel runs all implementations of an iteration concurrently.
	Parallel        bool
	Script          string
	HealthTimeout   time.Duration
	Stabilization   time.Duration
	TeardownTimeout time.Duration
	// ArtifactsDir receives per-trial resource files. Empty disables them.
	ArtifactsDir string
}

// DefaultConfig returns campaign defaults without implementations.
func DefaultConfig() Config {
	return Config{
		Iterations:      5,
		ErrorBound:      DefaultErrorBound,
		Policy:          BoundOnly,
		Script:          "/scripts/stress-test.js",
		HealthTimeout:   90 * time.Second,
		Stabilization:   3 * time.Second,
		TeardownTimeout: 2 * time.Minute,
	}
}

// Validate checks that the campaign can be run.
func (c Config) Validate() error {
	if len(c.Implementations) == 0 {
		return errors.New("no implementations configured")
	}
	if c.Iterations < 1 {
		return errors.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.ErrorBound <= 0 || c.ErrorBound > 1 {
		return errors.Errorf("error bound must be in (0, 1], got %v", c.ErrorBound)
	}
	if c.Policy != BoundOnly && c.Policy != ToolAuthoritative {
		return errors.Errorf("unknown threshold policy %d", c.Policy)
	}
	if c.Script == "" {
		return errors.New("load script is empty")
	}
	if c.HealthTimeout <= 0 || c.TeardownTimeout <= 0 {
		return errors.New("health and teardown timeouts must be positive")
	}

	ids := map[string]bool{}
	ports := map[int]bool{}
	namespaces := map[string]bool{}
	labels := map[string]bool{}
	for _, implementation := range c.Implementations {
		if ids[implementation.ID] || ports[implementation.Port] || namespaces[implementation.Namespace] {
			return errors.Errorf("implementation %s is not isolated from the others", implementation)
		}
		if c.Parallel && labels[implementation.ServiceLabel] {
			return errors.Errorf("implementation %s shares service label %q, cannot run in parallel",
				implementation, implementation.ServiceLabel)
		}
		ids[implementation.ID] = true
		ports[implementation.Port] = true
		namespaces[implementation.Namespace] = true
		labels[implementation.ServiceLabel] = true
	}
	return nil
}

func (c Config) copy() Config {
	c.Implementations = append([]stack.ImplementationConfig(nil), c.Implementations...)
	return c
}

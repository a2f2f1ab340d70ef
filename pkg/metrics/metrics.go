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

// Package metrics reads resource and GC telemetry of a trial from the
// telemetry backend.
package metrics

import (
	"strings"
	"time"
)

// ServicePlaceholder is replaced by the service label in candidate selectors.
const ServicePlaceholder = "{service}"

// Names of the logical metrics of ResourceSummary.
const (
	MemoryMetric     = "memory"
	AllocationMetric = "allocation"
	CPUMetric        = "cpu"
	GCPauseMetric    = "gc_pause"
)

// Kind tells how a metric is summarised over a trial window.
type Kind int

const (
	// Gauge is summarised as maximum over window.
	Gauge Kind = iota
	// Counter is summarised as increase over window.
	Counter
)

// SeriesMode tells whether and how raw time series of a metric is exported.
type SeriesMode int

const (
	// NoSeries skips the metric in ResourceTimeSeries.
	NoSeries SeriesMode = iota
	// RawSeries exports values as they are.
	RawSeries
	// RateSeries exports per-second rate of a counter.
	RateSeries
)

// Candidate is one way of reading a logical metric.
type Candidate struct {
	// Selector is a series selector, e.g. `process_cpu_seconds_total{service_name="{service}"}`.
	Selector string
	// Scale multiplies the result, e.g. 1e-9 for nanoseconds to seconds.
	// Zero means 1.
	Scale float64
	// Sum aggregates all matching series into one. Otherwise the largest
	// series is taken, e.g. when a stale container left one behind.
	Sum bool
}

func (c Candidate) selector(serviceLabel string) string {
	return strings.Replace(c.Selector, ServicePlaceholder, serviceLabel, -1)
}

func (c Candidate) scale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

// Metric is a logical metric resolved through ordered candidates.
type Metric struct {
	Name       string
	Kind       Kind
	Series     SeriesMode
	Candidates []Candidate
}

func serviceSelector(metric string) string {
	return metric + `{service_name="` + ServicePlaceholder + `"}`
}

// DefaultMetrics returns metrics exported by the benchmarked .NET services.
// Candidates cover both OpenTelemetry runtime instrumentation and
// prometheus-net naming.
func DefaultMetrics() []Metric {
	return []Metric{
		{
			Name:   MemoryMetric,
			Kind:   Gauge,
			Series: RawSeries,
			Candidates: []Candidate{
				{Selector: serviceSelector("process_runtime_dotnet_gc_committed_memory_size_bytes")},
				{Selector: serviceSelector("dotnet_gc_heap_size_bytes"), Sum: true},
				{Selector: serviceSelector("process_working_set_bytes")},
			},
		},
		{
			Name:   AllocationMetric,
			Kind:   Counter,
			Series: RateSeries,
			Candidates: []Candidate{
				{Selector: serviceSelector("process_runtime_dotnet_gc_allocations_size_bytes_total")},
				{Selector: serviceSelector("dotnet_gc_allocated_bytes_total"), Sum: true},
			},
		},
		{
			Name: CPUMetric,
			Kind: Counter,
			Candidates: []Candidate{
				{Selector: serviceSelector("process_cpu_seconds_total")},
			},
		},
		{
			Name: GCPauseMetric,
			Kind: Counter,
			Candidates: []Candidate{
				{Selector: serviceSelector("process_runtime_dotnet_gc_duration_nanoseconds_total"), Scale: 1e-9},
				{Selector: serviceSelector("dotnet_gc_pause_seconds_total"), Sum: true},
			},
		},
	}
}

// ResourceSummary holds per-trial resource usage. Missing data is zero.
type ResourceSummary struct {
	PeakMemoryBytes float64 `json:"peak_memory_bytes"`
	AllocatedBytes  float64 `json:"allocated_bytes"`
	CPUSeconds      float64 `json:"cpu_seconds"`
	GCPauseSeconds  float64 `json:"gc_pause_seconds"`
}

func (s *ResourceSummary) set(name string, value float64) {
	switch name {
	case MemoryMetric:
		s.PeakMemoryBytes = value
	case AllocationMetric:
		s.AllocatedBytes = value
	case CPUMetric:
		s.CPUSeconds = value
	case GCPauseMetric:
		s.GCPauseSeconds = value
	}
}

// Point is a time series sample with time relative to the trial start.
type Point struct {
	Seconds float64 `json:"t"`
	Value   float64 `json:"v"`
}

// ResourceTimeSeries holds exported series keyed by metric name.
type ResourceTimeSeries map[string][]Point

// Window is the time range of a trial.
type Window struct {
	Start time.Time
	End   time.Time
}

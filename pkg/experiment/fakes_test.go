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

package experiment_test

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/report"
	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
)

type fakeStack struct {
	mu           sync.Mutex
	provisionErr map[string]error
	provisioned  []string
	tornDown     []string
	// teardownCtxLive records whether teardown got a usable context.
	teardownCtxLive []bool
}

func newFakeStack() *fakeStack {
	return &fakeStack{provisionErr: map[string]error{}}
}

func (f *fakeStack) Provision(ctx context.Context, config stack.ImplementationConfig) (*stack.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provisioned = append(f.provisioned, config.ID)
	return stack.NewHandle(config, "localhost"), f.provisionErr[config.ID]
}

func (f *fakeStack) Teardown(ctx context.Context, handle *stack.Handle) error {
	if handle == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tornDown = append(f.tornDown, handle.Config.ID)
	f.teardownCtxLive = append(f.teardownCtxLive, ctx.Err() == nil)
	return nil
}

type fakeProbe struct {
	mu       sync.Mutex
	notReady map[string]bool
	seen     map[string][]string
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{notReady: map[string]bool{}, seen: map[string][]string{}}
}

func (f *fakeProbe) AwaitReady(ctx context.Context, handle *stack.Handle, timeout time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[handle.Config.ID] = append(f.seen[handle.Config.ID], handle.BaseURL)
	return !f.notReady[handle.Config.ID]
}

type fakeInvoker struct {
	mu       sync.Mutex
	outcomes map[string]workloads.RunOutcome
	calls    int
	seen     map[string][]string
	// cancelOnCall cancels the campaign when call number is reached and
	// blocks until the cancellation is observed.
	cancelOnCall int
	cancel       context.CancelFunc
	panicFor     string
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{outcomes: map[string]workloads.RunOutcome{}, seen: map[string][]string{}}
}

func successOutcome() workloads.RunOutcome {
	return workloads.RunOutcome{
		Status: workloads.NORMAL,
		Result: &workloads.LoadRunResult{
			Throughput: 250,
			Latency:    workloads.Latency{Avg: 20, P50: 15, P75: 25, P90: 60, P95: 123.45, P99: 200},
			ErrorRate:  0.01,
		},
		ArtifactPath: "",
	}
}

func (f *fakeInvoker) Run(ctx context.Context, handle *stack.Handle, target workloads.Target) workloads.RunOutcome {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.seen[handle.Config.ID] = append(f.seen[handle.Config.ID], handle.Config.Namespace)
	outcome, ok := f.outcomes[handle.Config.ID]
	f.mu.Unlock()

	if handle.Config.ID == f.panicFor {
		panic("load generator exploded")
	}
	if f.cancelOnCall != 0 && call == f.cancelOnCall {
		f.cancel()
		<-ctx.Done()
		return workloads.RunOutcome{Status: workloads.CRASH, ExitCode: -1, Err: ctx.Err()}
	}
	if !ok {
		return successOutcome()
	}
	return outcome
}

type fakeCollector struct {
	mu      sync.Mutex
	summary metrics.ResourceSummary
	labels  []string
}

func (f *fakeCollector) Collect(ctx context.Context, serviceLabel string, window metrics.Window) (metrics.ResourceSummary, metrics.ResourceTimeSeries) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, serviceLabel)
	return f.summary, metrics.ResourceTimeSeries{metrics.MemoryMetric: {{Seconds: 0, Value: f.summary.PeakMemoryBytes}}}
}

type memorySink struct {
	mu   sync.Mutex
	rows []report.Row
	err  error
}

func (s *memorySink) Append(row report.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

type fakeInfrastructure struct {
	startErr error
	started  bool
	stopped  bool
}

func (f *fakeInfrastructure) Start(ctx context.Context) error {
	f.started = true
	return f.startErr
}

func (f *fakeInfrastructure) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

type recordingUploader struct {
	mu      sync.Mutex
	records []metrics.Record
}

func (u *recordingUploader) SendMetrics(record metrics.Record) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, record)
	return errors.New("uploads are best effort")
}

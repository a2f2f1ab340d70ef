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
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AndresRojas1512/marketstat-bench/pkg/health"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metadata"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/report"
	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/wait"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
)

// ResourceCollector reads resource usage of an instance over a window.
type ResourceCollector interface {
	Collect(ctx context.Context, serviceLabel string, window metrics.Window) (metrics.ResourceSummary, metrics.ResourceTimeSeries)
}

// ArtifactAugmenter stores extra data in the load generator artifact at path.
type ArtifactAugmenter func(path string, custom interface{}) error

// Components are the collaborators of an Orchestrator. Stack, Probe,
// Invoker, Collector and Report are required, the rest may be nil.
type Components struct {
	Stack     stack.Controller
	Probe     health.Probe
	Invoker   workloads.Invoker
	Collector ResourceCollector
	Report    report.Sink

	// Infrastructure shared by all trials, started before the first one.
	Infrastructure stack.Infrastructure
	Metadata       metadata.Metadata
	Uploader       metrics.Uploader
	Augment        ArtifactAugmenter
	Progress       *Progress
}

// Orchestrator runs a campaign.
type Orchestrator struct {
	config     Config
	components Components
}

// New returns orchestrator of a campaign. Config is copied.
func New(config Config, components Components) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid campaign configuration")
	}
	if components.Stack == nil || components.Probe == nil || components.Invoker == nil ||
		components.Collector == nil || components.Report == nil {
		return nil, errors.New("stack, probe, invoker, collector and report are required")
	}
	return &Orchestrator{config: config.copy(), components: components}, nil
}

// Config returns a copy of campaign configuration.
func (o *Orchestrator) Config() Config {
	return o.config.copy()
}

// Trial is a single attempt of one implementation in one iteration.
type Trial struct {
	Iteration      int
	Implementation stack.ImplementationConfig
	State          State
	Status         report.Status
	Kind           Kind
	Err            error
	StartedAt      time.Time
	EndedAt        time.Time
	Window         metrics.Window
}

type trialResult struct {
	trial *Trial
	row   report.Row
}

// Summary of a campaign run.
type Summary struct {
	Rows   []report.Row
	Counts map[report.Status]int
}

func (s *Summary) add(row report.Row) {
	s.Rows = append(s.Rows, row)
	s.Counts[row.Status]++
}

// customMetrics is stored in the load generator artifact.
type customMetrics struct {
	Timestamp string                     `json:"timestamp"`
	Summary   metrics.ResourceSummary    `json:"resource_summary"`
	Series    metrics.ResourceTimeSeries `json:"time_series,omitempty"`
}

// Run executes the campaign: iterations in order, in every iteration all
// implementations either back to back or concurrently.
//
// When ctx is cancelled the trials in flight are torn down without writing
// their rows and ctx error is returned. A failure of the shared
// infrastructure or of the report is returned as InfrastructureFailure. Rows
// written before remain in the report in both cases.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Counts: map[report.Status]int{}}

	if infrastructure := o.components.Infrastructure; infrastructure != nil {
		defer func() {
			stopCtx, cancel := o.teardownContext(ctx)
			defer cancel()
			if err := infrastructure.Stop(stopCtx); err != nil {
				logrus.Errorf("Cannot stop shared infrastructure: %v", err)
			}
		}()
		if err := infrastructure.Start(ctx); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			return summary, newTrialError(InfrastructureFailure, err)
		}
	}

	o.recordCampaign()
	defer o.components.Progress.Finish()

	for iteration := 1; iteration <= o.config.Iterations; iteration++ {
		logrus.Infof("Iteration %d/%d", iteration, o.config.Iterations)

		var err error
		if o.config.Parallel {
			err = o.runParallel(ctx, iteration, &summary)
		} else {
			err = o.runSequential(ctx, iteration, &summary)
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, iteration int, summary *Summary) error {
	for _, implementation := range o.config.Implementations {
		result, err := o.runTrial(ctx, iteration, implementation)
		if err != nil {
			return err
		}
		if err := o.persist(result, summary); err != nil {
			return err
		}
	}
	return nil
}

// runParallel runs all implementations concurrently and writes rows of the
// completed trials in configuration order after all of them finished.
func (o *Orchestrator) runParallel(ctx context.Context, iteration int, summary *Summary) error {
	results := make([]*trialResult, len(o.config.Implementations))
	group, groupCtx := errgroup.WithContext(ctx)
	for idx, implementation := range o.config.Implementations {
		idx, implementation := idx, implementation
		group.Go(func() error {
			result, err := o.runTrial(groupCtx, iteration, implementation)
			results[idx] = result
			return err
		})
	}
	waitErr := group.Wait()

	for _, result := range results {
		if result == nil {
			continue
		}
		if err := o.persist(result, summary); err != nil {
			return err
		}
	}
	if waitErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return waitErr
}

func (o *Orchestrator) teardownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.config.TeardownTimeout)
}

func (o *Orchestrator) transition(log *logrus.Entry, trial *Trial, state State) {
	log.Debugf("%s -> %s", trial.State, state)
	trial.State = state
}

// runTrial walks a trial through its states. The stack is torn down on every
// path. A nil result with error means the trial was interrupted or the
// provisioning subsystem is broken.
func (o *Orchestrator) runTrial(ctx context.Context, iteration int, implementation stack.ImplementationConfig) (result *trialResult, err error) {
	trial := &Trial{Iteration: iteration, Implementation: implementation, StartedAt: time.Now()}
	log := logrus.WithFields(logrus.Fields{
		"iteration":      iteration,
		"implementation": implementation.ID,
		"port":           implementation.Port,
	})
	o.components.Progress.Begin(iteration, o.config.Iterations, implementation.ID)

	var handle *stack.Handle
	defer func() {
		o.transition(log, trial, StateTeardown)
		teardownCtx, cancel := o.teardownContext(ctx)
		defer cancel()
		if teardownErr := o.components.Stack.Teardown(teardownCtx, handle); teardownErr != nil {
			log.Errorf("Teardown failed: %v", teardownErr)
		}
		trial.EndedAt = time.Now()
		o.transition(log, trial, StateDone)
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Trial panicked: %v\n%s", r, debug.Stack())
			o.transition(log, trial, StateFailed)
			trial.Err = newTrialError(Unclassified, errors.Errorf("panic: %v", r))
			result, err = o.finish(trial, report.StatusFailed, Unclassified, nil, metrics.ResourceSummary{}), nil
		}
	}()

	o.transition(log, trial, StateProvisioning)
	handle, err = o.components.Stack.Provision(ctx, implementation)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		if !stack.IsStartupError(err) {
			return nil, newTrialError(InfrastructureFailure, err)
		}
		return o.startFailed(log, trial, err), nil
	}

	if !o.components.Probe.AwaitReady(ctx, handle, o.config.HealthTimeout) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.startFailed(log, trial, errors.Errorf("%s not ready within %s", handle.BaseURL, o.config.HealthTimeout)), nil
	}
	o.transition(log, trial, StateHealthy)

	if err := wait.Sleep(ctx, o.config.Stabilization); err != nil {
		return nil, err
	}

	o.transition(log, trial, StateLoadRunning)
	trial.Window.Start = time.Now()
	outcome := o.components.Invoker.Run(ctx, handle, workloads.Target{Script: o.config.Script, Iteration: iteration})
	trial.Window.End = time.Now()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	status, kind := Classify(outcome, o.config.ErrorBound, o.config.Policy)
	if kind != KindNone {
		trial.Err = newTrialError(kind, o.outcomeError(outcome))
		log.Warnf("Load run ended with %s: %v", outcome.Status, trial.Err)
	}

	// Resources are collected whatever the outcome, a crashed run may still
	// have partial data.
	summary, series := o.components.Collector.Collect(ctx, implementation.ServiceLabel, trial.Window)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if summary == (metrics.ResourceSummary{}) {
		log.Warnf("%s: no resource data for %q", MetricsUnavailable, implementation.ServiceLabel)
	}

	o.export(log, trial, status, outcome, summary, series)
	o.transition(log, trial, stateOf(status))
	return o.finish(trial, status, kind, outcome.Result, summary), nil
}

func (o *Orchestrator) outcomeError(outcome workloads.RunOutcome) error {
	if outcome.Result != nil {
		return errors.Errorf("error rate %.4f with bound %.4f, load generator exited with %s",
			outcome.Result.ErrorRate, o.config.ErrorBound, outcome.Status)
	}
	if outcome.Err != nil {
		return outcome.Err
	}
	return errors.Errorf("load generator exited with %s without result", outcome.Status)
}

// startFailed finishes trial whose stack never became ready. No load is run
// and no metrics are collected.
func (o *Orchestrator) startFailed(log *logrus.Entry, trial *Trial, cause error) *trialResult {
	o.transition(log, trial, StateStartFailed)
	trial.Err = newTrialError(StartupFailure, cause)
	log.Warnf("Stack did not start: %v", cause)
	return o.finish(trial, report.StatusCrashed, StartupFailure, nil, metrics.ResourceSummary{})
}

func (o *Orchestrator) finish(trial *Trial, status report.Status, kind Kind, result *workloads.LoadRunResult, summary metrics.ResourceSummary) *trialResult {
	trial.Status = status
	trial.Kind = kind
	return &trialResult{
		trial: trial,
		row:   report.NewRow(trial.Iteration, trial.Implementation.ID, status, result, summary),
	}
}

// export sends trial resources to optional destinations. Failures are logged.
func (o *Orchestrator) export(log *logrus.Entry, trial *Trial, status report.Status, outcome workloads.RunOutcome,
	summary metrics.ResourceSummary, series metrics.ResourceTimeSeries) {

	if o.components.Uploader != nil {
		err := o.components.Uploader.SendMetrics(metrics.Record{
			CampaignID:     o.config.CampaignID,
			Iteration:      trial.Iteration,
			Implementation: trial.Implementation.ID,
			Status:         string(status),
			Window:         trial.Window,
			Summary:        summary,
			Series:         series,
		})
		if err != nil {
			log.Warnf("Cannot upload resources: %v", err)
		}
	}

	if o.config.ArtifactsDir != "" {
		path, err := report.WriteResources(o.config.ArtifactsDir, report.Resources{
			Iteration:      trial.Iteration,
			Implementation: trial.Implementation.ID,
			Status:         status,
			Summary:        summary,
			Series:         series,
		})
		if err != nil {
			log.Warnf("Cannot write resources: %v", err)
		} else {
			log.Debugf("Resources written to %s", path)
		}
	}

	if o.components.Augment != nil && outcome.Result != nil && outcome.ArtifactPath != "" {
		err := o.components.Augment(outcome.ArtifactPath, customMetrics{
			Timestamp: trial.Window.End.Format(time.RFC3339),
			Summary:   summary,
			Series:    series,
		})
		if err != nil {
			log.Warnf("Cannot augment artifact %s: %v", outcome.ArtifactPath, err)
		}
	}
}

// persist appends the row of a finished trial and prints its progress line.
func (o *Orchestrator) persist(result *trialResult, summary *Summary) error {
	row := result.row
	if err := o.components.Report.Append(row); err != nil {
		return newTrialError(InfrastructureFailure, errors.Wrap(err, "cannot write report"))
	}
	summary.add(row)
	o.components.Progress.Done()

	line := fmt.Sprintf("[iter %d/%d] %s -> %s (req/s=%.2f, p95=%.2f, err=%.2f%%)",
		row.Iteration, o.config.Iterations, row.Implementation, row.Status,
		row.RequestsPerSec, row.P95, row.ErrorRatePct)
	if row.Status == report.StatusSuccess {
		logrus.Info(line)
	} else {
		logrus.Warnf("%s [%s]", line, result.trial.Kind)
	}
	return nil
}

func (o *Orchestrator) recordCampaign() {
	if o.components.Metadata == nil {
		return
	}
	ids := make([]string, 0, len(o.config.Implementations))
	for _, implementation := range o.config.Implementations {
		ids = append(ids, implementation.String())
	}
	err := o.components.Metadata.RecordMap(map[string]string{
		"campaign_id":      o.config.CampaignID,
		"implementations":  strings.Join(ids, ","),
		"iterations":       strconv.Itoa(o.config.Iterations),
		"error_bound":      strconv.FormatFloat(o.config.ErrorBound, 'f', -1, 64),
		"threshold_policy": o.config.Policy.String(),
		"parallel":         strconv.FormatBool(o.config.Parallel),
		"script":           o.config.Script,
	}, metadata.TypeEmpty)
	if err != nil {
		logrus.Warnf("Cannot record campaign metadata: %v", err)
	}
}

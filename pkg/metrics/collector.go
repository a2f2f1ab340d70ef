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

package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/wait"
	"github.com/sirupsen/logrus"
)

// CollectorConfig configures Collector.
type CollectorConfig struct {
	// Buffer extends the window past the trial end to cover ingestion lag.
	Buffer time.Duration
	// SettleDelay is waited before querying, for the last scrape to land.
	SettleDelay time.Duration
	// Step of range queries.
	Step time.Duration
	// RateWindow of rate() in RateSeries.
	RateWindow time.Duration
	// Series enables ResourceTimeSeries collection.
	Series bool
}

// DefaultCollectorConfig returns config used by the benchmark.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Buffer:      10 * time.Second,
		SettleDelay: 5 * time.Second,
		Step:        time.Second,
		RateWindow:  time.Minute,
		Series:      true,
	}
}

// Collector resolves logical metrics of one instance for a trial window.
type Collector struct {
	query   QueryService
	metrics []Metric
	config  CollectorConfig
}

// NewCollector returns collector reading metrics from query.
func NewCollector(query QueryService, metrics []Metric, config CollectorConfig) *Collector {
	if config.Step <= 0 {
		config.Step = time.Second
	}
	if config.RateWindow <= 0 {
		config.RateWindow = time.Minute
	}
	return &Collector{query: query, metrics: metrics, config: config}
}

// Collect returns resource summary of the instance labeled serviceLabel over
// window and, when enabled, its time series. Metrics without data are zero.
// It never fails, a cancelled ctx only cuts collection short.
func (c *Collector) Collect(ctx context.Context, serviceLabel string, window Window) (ResourceSummary, ResourceTimeSeries) {
	summary := ResourceSummary{}
	if err := wait.Sleep(ctx, c.config.SettleDelay); err != nil {
		return summary, nil
	}

	end := window.End.Add(c.config.Buffer)
	rangeSelector := rangeOf(end.Sub(window.Start))
	log := logrus.WithField("service", serviceLabel)

	winners := map[string]Candidate{}
	for _, metric := range c.metrics {
		value, winner, ok := c.resolve(ctx, metric, serviceLabel, rangeSelector, end)
		if !ok {
			log.Debugf("no data for %s, using 0", metric.Name)
			continue
		}
		winners[metric.Name] = winner
		summary.set(metric.Name, value)
	}

	if !c.config.Series {
		return summary, nil
	}

	series := ResourceTimeSeries{}
	for _, metric := range c.metrics {
		if metric.Series == NoSeries || len(metric.Candidates) == 0 {
			continue
		}
		candidate, ok := winners[metric.Name]
		if !ok {
			candidate = metric.Candidates[0]
		}
		points, err := c.series(ctx, metric, candidate, serviceLabel, window.Start, end)
		if err != nil {
			log.Debugf("no series for %s: %v", metric.Name, err)
			continue
		}
		series[metric.Name] = points
	}
	return summary, series
}

// resolve returns value of the first candidate with nonzero result.
func (c *Collector) resolve(ctx context.Context, metric Metric, serviceLabel, rangeSelector string, at time.Time) (float64, Candidate, bool) {
	for _, candidate := range metric.Candidates {
		expr := summaryExpression(metric.Kind, candidate, serviceLabel, rangeSelector)
		value, err := c.query.Query(ctx, expr, at)
		if err != nil {
			if !IsNoData(err) {
				logrus.Warnf("query %q failed: %v", expr, err)
			}
			continue
		}
		if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		return value * candidate.scale(), candidate, true
	}
	return 0, Candidate{}, false
}

func (c *Collector) series(ctx context.Context, metric Metric, candidate Candidate, serviceLabel string, start, end time.Time) ([]Point, error) {
	expr := candidate.selector(serviceLabel)
	if metric.Series == RateSeries {
		expr = fmt.Sprintf("rate(%s%s)", expr, rangeOf(c.config.RateWindow))
	}
	expr = aggregate(candidate, expr)

	samples, err := c.query.QueryRange(ctx, expr, start, end, c.config.Step)
	if err != nil {
		return nil, err
	}

	scale := candidate.scale()
	points := make([]Point, 0, len(samples))
	for _, sample := range samples {
		points = append(points, Point{
			Seconds: sample.Time.Sub(start).Seconds(),
			Value:   sample.Value * scale,
		})
	}
	return points, nil
}

func summaryExpression(kind Kind, candidate Candidate, serviceLabel, rangeSelector string) string {
	function := "increase"
	if kind == Gauge {
		function = "max_over_time"
	}
	return aggregate(candidate, fmt.Sprintf("%s(%s%s)", function, candidate.selector(serviceLabel), rangeSelector))
}

// aggregate reduces expr to a single series.
func aggregate(candidate Candidate, expr string) string {
	if candidate.Sum {
		return "sum(" + expr + ")"
	}
	return "max(" + expr + ")"
}

// rangeOf renders duration as range selector in whole seconds, rounded up.
func rangeOf(d time.Duration) string {
	seconds := int64(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("[%ds]", seconds)
}

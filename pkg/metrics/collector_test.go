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

package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics/mocks"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

const service = "MarketStat.API.BASELINE"

func TestCollector(t *testing.T) {
	Convey("While collecting metrics of a trial", t, func() {
		ctx := context.Background()
		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		window := metrics.Window{Start: start, End: start.Add(30 * time.Second)}
		evaluatedAt := window.End.Add(10 * time.Second)

		query := new(mocks.QueryService)
		config := metrics.CollectorConfig{Buffer: 10 * time.Second, Step: time.Second, RateWindow: time.Minute}
		collector := metrics.NewCollector(query, metrics.DefaultMetrics(), config)

		memory := `max(max_over_time(process_runtime_dotnet_gc_committed_memory_size_bytes{service_name="MarketStat.API.BASELINE"}[40s]))`
		heap := `sum(max_over_time(dotnet_gc_heap_size_bytes{service_name="MarketStat.API.BASELINE"}[40s]))`
		workingSet := `max(max_over_time(process_working_set_bytes{service_name="MarketStat.API.BASELINE"}[40s]))`
		allocation := `max(increase(process_runtime_dotnet_gc_allocations_size_bytes_total{service_name="MarketStat.API.BASELINE"}[40s]))`
		allocated := `sum(increase(dotnet_gc_allocated_bytes_total{service_name="MarketStat.API.BASELINE"}[40s]))`
		cpu := `max(increase(process_cpu_seconds_total{service_name="MarketStat.API.BASELINE"}[40s]))`
		gcDuration := `max(increase(process_runtime_dotnet_gc_duration_nanoseconds_total{service_name="MarketStat.API.BASELINE"}[40s]))`
		gcPause := `sum(increase(dotnet_gc_pause_seconds_total{service_name="MarketStat.API.BASELINE"}[40s]))`

		Convey("First candidate with data wins and remaining ones are skipped", func() {
			query.On("Query", ctx, memory, evaluatedAt).Return(0.0, metrics.ErrNoData).Once()
			query.On("Query", ctx, heap, evaluatedAt).Return(256e6, nil).Once()
			query.On("Query", ctx, allocation, evaluatedAt).Return(0.0, nil).Once()
			query.On("Query", ctx, allocated, evaluatedAt).Return(1.5e9, nil).Once()
			query.On("Query", ctx, cpu, evaluatedAt).Return(12.5, nil).Once()
			query.On("Query", ctx, gcDuration, evaluatedAt).Return(2.5e8, nil).Once()

			summary, series := collector.Collect(ctx, service, window)
			So(summary, ShouldResemble, metrics.ResourceSummary{
				PeakMemoryBytes: 256e6,
				AllocatedBytes:  1.5e9,
				CPUSeconds:      12.5,
				GCPauseSeconds:  0.25,
			})
			So(series, ShouldBeNil)
			query.AssertNotCalled(t, "Query", ctx, workingSet, evaluatedAt)
			query.AssertNotCalled(t, "Query", ctx, gcPause, evaluatedAt)
			query.AssertExpectations(t)
		})

		Convey("Metrics without data in any candidate are zero", func() {
			query.On("Query", ctx, mock.Anything, evaluatedAt).Return(0.0, metrics.ErrNoData)

			summary, _ := collector.Collect(ctx, service, window)
			So(summary, ShouldResemble, metrics.ResourceSummary{})
		})

		Convey("Query errors fall through to next candidate", func() {
			query.On("Query", ctx, memory, evaluatedAt).Return(0.0, errors.New("503 Service Unavailable"))
			query.On("Query", ctx, heap, evaluatedAt).Return(64e6, nil)
			query.On("Query", ctx, mock.Anything, evaluatedAt).Return(0.0, metrics.ErrNoData)

			summary, _ := collector.Collect(ctx, service, window)
			So(summary.PeakMemoryBytes, ShouldEqual, 64e6)
			So(summary.CPUSeconds, ShouldEqual, 0)
		})

		Convey("Series are normalized to the trial start", func() {
			config.Series = true
			collector := metrics.NewCollector(query, metrics.DefaultMetrics(), config)

			query.On("Query", ctx, memory, evaluatedAt).Return(300e6, nil)
			query.On("Query", ctx, mock.Anything, evaluatedAt).Return(0.0, metrics.ErrNoData)

			memorySeries := `max(process_runtime_dotnet_gc_committed_memory_size_bytes{service_name="MarketStat.API.BASELINE"})`
			allocationRate := `max(rate(process_runtime_dotnet_gc_allocations_size_bytes_total{service_name="MarketStat.API.BASELINE"}[60s]))`
			query.On("QueryRange", ctx, memorySeries, start, evaluatedAt, time.Second).Return([]metrics.Sample{
				{Time: start.Add(2 * time.Second), Value: 100e6},
				{Time: start.Add(3 * time.Second), Value: 300e6},
			}, nil)
			query.On("QueryRange", ctx, allocationRate, start, evaluatedAt, time.Second).Return(nil, metrics.ErrNoData)

			summary, series := collector.Collect(ctx, service, window)
			So(summary.PeakMemoryBytes, ShouldEqual, 300e6)
			So(series, ShouldResemble, metrics.ResourceTimeSeries{
				metrics.MemoryMetric: {{Seconds: 2, Value: 100e6}, {Seconds: 3, Value: 300e6}},
			})
		})

		Convey("Every query is reduced to a single series", func() {
			config.Series = true
			collector := metrics.NewCollector(query, metrics.DefaultMetrics(), config)

			var expressions []string
			aggregated := func(expr string) bool {
				expressions = append(expressions, expr)
				return true
			}
			query.On("Query", ctx, mock.MatchedBy(aggregated), evaluatedAt).Return(0.0, metrics.ErrNoData)
			query.On("QueryRange", ctx, mock.MatchedBy(aggregated), start, evaluatedAt, time.Second).Return(nil, metrics.ErrNoData)

			collector.Collect(ctx, service, window)
			So(expressions, ShouldNotBeEmpty)
			for _, expr := range expressions {
				So(strings.HasPrefix(expr, "max(") || strings.HasPrefix(expr, "sum("), ShouldBeTrue)
			}
			So(expressions, ShouldContain, workingSet)
		})

		Convey("Gauge reporting several series falls through to next candidate", func() {
			query.On("Query", ctx, memory, evaluatedAt).Return(0.0, errors.Wrap(metrics.ErrMultipleSeries, "2 series"))
			query.On("Query", ctx, heap, evaluatedAt).Return(128e6, nil)
			query.On("Query", ctx, mock.Anything, evaluatedAt).Return(0.0, metrics.ErrNoData)

			summary, _ := collector.Collect(ctx, service, window)
			So(summary.PeakMemoryBytes, ShouldEqual, 128e6)
		})

		Convey("Cancelled context during settle delay returns zero summary", func() {
			config.SettleDelay = time.Hour
			collector := metrics.NewCollector(query, metrics.DefaultMetrics(), config)
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			summary, series := collector.Collect(cancelled, service, window)
			So(summary, ShouldResemble, metrics.ResourceSummary{})
			So(series, ShouldBeNil)
			query.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
		})
	})
}

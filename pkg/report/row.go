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

// Package report persists one fixed-width row per trial.
package report

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
)

// Status is the final classification of a trial.
type Status string

// Trial statuses.
const (
	StatusSuccess       Status = "SUCCESS"
	StatusThresholdFail Status = "THRESHOLD_FAIL"
	StatusFailed        Status = "FAILED"
	StatusCrashed       Status = "CRASHED"
)

// SaturatedErrorRatePct is the error rate of a trial that never produced a
// measurement.
const SaturatedErrorRatePct = 100

const bytesInMB = 1024 * 1024

// Columns is the fixed header of the report.
var Columns = []string{
	"Iteration", "Implementation", "Status", "Req/s",
	"Avg_Latency", "P50", "P75", "P90", "P95", "P99",
	"Error_Rate", "Max_Memory_MB", "Total_Alloc_MB", "GC_Time_Sec", "CPU_Time_Sec",
}

// Row is a trial flattened into report columns. Values lacking a source are zero.
type Row struct {
	Iteration      int
	Implementation string
	Status         Status

	RequestsPerSec float64
	AvgLatency     float64
	P50            float64
	P75            float64
	P90            float64
	P95            float64
	P99            float64
	ErrorRatePct   float64

	PeakMemoryMB float64
	TotalAllocMB float64
	GCPauseSec   float64
	CPUSec       float64
}

// NewRow flattens a trial. Result may be nil. A crashed trial always carries
// saturated error rate.
func NewRow(iteration int, implementation string, status Status, result *workloads.LoadRunResult, summary metrics.ResourceSummary) Row {
	row := Row{
		Iteration:      iteration,
		Implementation: implementation,
		Status:         status,
		PeakMemoryMB:   summary.PeakMemoryBytes / bytesInMB,
		TotalAllocMB:   summary.AllocatedBytes / bytesInMB,
		GCPauseSec:     summary.GCPauseSeconds,
		CPUSec:         summary.CPUSeconds,
	}

	if result != nil {
		row.RequestsPerSec = result.Throughput
		row.AvgLatency = result.Latency.Avg
		row.P50 = result.Latency.P50
		row.P75 = result.Latency.P75
		row.P90 = result.Latency.P90
		row.P95 = result.Latency.P95
		row.P99 = result.Latency.P99
		row.ErrorRatePct = result.ErrorRate * 100
	}

	if status == StatusCrashed {
		row.ErrorRatePct = SaturatedErrorRatePct
	}
	return row
}

func (r Row) values() []float64 {
	return []float64{
		r.RequestsPerSec, r.AvgLatency, r.P50, r.P75, r.P90, r.P95, r.P99,
		r.ErrorRatePct, r.PeakMemoryMB, r.TotalAllocMB, r.GCPauseSec, r.CPUSec,
	}
}

func format(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// Record returns the row encoded as report cells.
func (r Row) Record() []string {
	record := make([]string, 0, len(Columns))
	record = append(record, strconv.Itoa(r.Iteration), r.Implementation, string(r.Status))
	for _, value := range r.values() {
		record = append(record, format(value))
	}
	return record
}

// Map returns the row keyed by column names.
func (r Row) Map() map[string]string {
	record := r.Record()
	result := make(map[string]string, len(Columns))
	for idx, column := range Columns {
		result[column] = record[idx]
	}
	return result
}

// ParseRow decodes report cells.
func ParseRow(record []string) (Row, error) {
	if len(record) != len(Columns) {
		return Row{}, errors.Errorf("expected %d columns, got %d", len(Columns), len(record))
	}

	iteration, err := strconv.Atoi(record[0])
	if err != nil {
		return Row{}, errors.Wrapf(err, "invalid iteration %q", record[0])
	}

	values := make([]float64, 0, len(Columns)-3)
	for idx, cell := range record[3:] {
		value, err := decimal.NewFromString(cell)
		if err != nil {
			return Row{}, errors.Wrapf(err, "invalid %s %q", Columns[idx+3], cell)
		}
		f, _ := value.Float64()
		values = append(values, f)
	}

	return Row{
		Iteration:      iteration,
		Implementation: record[1],
		Status:         Status(record[2]),
		RequestsPerSec: values[0],
		AvgLatency:     values[1],
		P50:            values[2],
		P75:            values[3],
		P90:            values[4],
		P95:            values[5],
		P99:            values[6],
		ErrorRatePct:   values[7],
		PeakMemoryMB:   values[8],
		TotalAllocMB:   values[9],
		GCPauseSec:     values[10],
		CPUSec:         values[11],
	}, nil
}

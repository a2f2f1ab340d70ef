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
	"time"

	"github.com/pkg/errors"
)

// ErrNoData is returned by QueryService when a query matched no samples.
var ErrNoData = errors.New("no data")

// ErrMultipleSeries is returned by QueryService when a query was not
// aggregated to a single series.
var ErrMultipleSeries = errors.New("more than one series")

// Sample is a single value of a series.
type Sample struct {
	Time  time.Time
	Value float64
}

// QueryService is the telemetry backend.
type QueryService interface {
	// Query evaluates expr at given time. Expr must yield at most one series.
	Query(ctx context.Context, expr string, at time.Time) (float64, error)
	// QueryRange evaluates expr over a range. Expr must yield at most one
	// series. The result is ordered by time.
	QueryRange(ctx context.Context, expr string, start, end time.Time, step time.Duration) ([]Sample, error)
}

// IsNoData reports whether err means the query matched nothing.
func IsNoData(err error) bool {
	return errors.Cause(err) == ErrNoData
}

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

// Package prometheus implements metrics.QueryService on top of Prometheus
// HTTP API.
package prometheus

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/sirupsen/logrus"
)

// DefaultAddress of the benchmark's Prometheus.
const DefaultAddress = "http://localhost:9091"

const defaultQueryTimeout = 10 * time.Second

// Client queries Prometheus.
type Client struct {
	api     v1.API
	timeout time.Duration
}

// New returns client of Prometheus at address.
func New(address string) (*Client, error) {
	client, err := api.NewClient(api.Config{Address: address})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create prometheus client for %q", address)
	}
	return &Client{api: v1.NewAPI(client), timeout: defaultQueryTimeout}, nil
}

// Query implements metrics.QueryService.
func (c *Client) Query(ctx context.Context, expr string, at time.Time) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, warnings, err := c.api.Query(ctx, expr, at)
	if err != nil {
		return 0, errors.Wrapf(err, "query %q failed", expr)
	}
	logWarnings(expr, warnings)

	switch result := value.(type) {
	case model.Vector:
		return singleValue(result, expr)
	case *model.Scalar:
		if isMissing(result.Value) {
			return 0, metrics.ErrNoData
		}
		return float64(result.Value), nil
	}
	return 0, errors.Errorf("unexpected result type %s of query %q", value.Type(), expr)
}

// QueryRange implements metrics.QueryService.
func (c *Client) QueryRange(ctx context.Context, expr string, start, end time.Time, step time.Duration) ([]metrics.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, warnings, err := c.api.QueryRange(ctx, expr, v1.Range{Start: start, End: end, Step: step})
	if err != nil {
		return nil, errors.Wrapf(err, "range query %q failed", expr)
	}
	logWarnings(expr, warnings)

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, errors.Errorf("unexpected result type %s of range query %q", value.Type(), expr)
	}
	return singleSeries(matrix, expr)
}

func isMissing(value model.SampleValue) bool {
	v := float64(value)
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func singleValue(vector model.Vector, expr string) (float64, error) {
	if len(vector) > 1 {
		return 0, errors.Wrapf(metrics.ErrMultipleSeries, "query %q returned %d series", expr, len(vector))
	}
	if len(vector) == 0 || isMissing(vector[0].Value) {
		return 0, metrics.ErrNoData
	}
	return float64(vector[0].Value), nil
}

func singleSeries(matrix model.Matrix, expr string) ([]metrics.Sample, error) {
	if len(matrix) > 1 {
		return nil, errors.Wrapf(metrics.ErrMultipleSeries, "range query %q returned %d series", expr, len(matrix))
	}

	var samples []metrics.Sample
	if len(matrix) == 1 {
		for _, pair := range matrix[0].Values {
			if isMissing(pair.Value) {
				continue
			}
			samples = append(samples, metrics.Sample{Time: pair.Timestamp.Time(), Value: float64(pair.Value)})
		}
	}
	if len(samples) == 0 {
		return nil, metrics.ErrNoData
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
	return samples, nil
}

func logWarnings(expr string, warnings v1.Warnings) {
	for _, warning := range warnings {
		logrus.Debugf("prometheus warning for %q: %s", expr, warning)
	}
}

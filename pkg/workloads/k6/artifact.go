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

package k6

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
	"github.com/pkg/errors"
)

// ErrArtifactMissing is returned when k6 left no summary export behind.
var ErrArtifactMissing = errors.New("k6 summary export not found")

// summaryExport is the subset of k6 --summary-export document the benchmark
// reads. Every field is optional, defaults are applied in toResult only.
type summaryExport struct {
	Metrics *struct {
		HTTPReqDuration *trendMetric   `json:"http_req_duration"`
		HTTPReqs        *counterMetric `json:"http_reqs"`
		// ErrorRate is the custom Rate metric of the benchmark scripts.
		ErrorRate *rateMetric `json:"error_rate"`
		// HTTPReqFailed is the builtin Rate metric, used when the script
		// defines no error_rate.
		HTTPReqFailed *rateMetric `json:"http_req_failed"`
	} `json:"metrics"`
}

type trendMetric struct {
	Avg *float64 `json:"avg"`
	Med *float64 `json:"med"`
	P75 *float64 `json:"p(75)"`
	P90 *float64 `json:"p(90)"`
	P95 *float64 `json:"p(95)"`
	P99 *float64 `json:"p(99)"`
}

type counterMetric struct {
	Rate *float64 `json:"rate"`
}

// rateMetric reads the canonical "value" key of k6 Rate metrics.
type rateMetric struct {
	Value *float64 `json:"value"`
}

func orZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func (s summaryExport) toResult() workloads.LoadRunResult {
	result := workloads.LoadRunResult{}
	if s.Metrics == nil {
		return result
	}

	if trend := s.Metrics.HTTPReqDuration; trend != nil {
		result.Latency = workloads.Latency{
			Avg: orZero(trend.Avg),
			P50: orZero(trend.Med),
			P75: orZero(trend.P75),
			P90: orZero(trend.P90),
			P95: orZero(trend.P95),
			P99: orZero(trend.P99),
		}
	}
	if reqs := s.Metrics.HTTPReqs; reqs != nil {
		result.Throughput = orZero(reqs.Rate)
	}

	switch {
	case s.Metrics.ErrorRate != nil:
		result.ErrorRate = orZero(s.Metrics.ErrorRate.Value)
	case s.Metrics.HTTPReqFailed != nil:
		result.ErrorRate = orZero(s.Metrics.HTTPReqFailed.Value)
	}
	return result
}

// ParseArtifact decodes k6 summary export. Missing metrics are zero. A
// document without "metrics" object is not a summary export and is rejected.
func ParseArtifact(reader io.Reader) (workloads.LoadRunResult, error) {
	var summary summaryExport
	if err := json.NewDecoder(reader).Decode(&summary); err != nil {
		return workloads.LoadRunResult{}, errors.Wrap(err, "cannot decode k6 summary export")
	}
	if summary.Metrics == nil {
		return workloads.LoadRunResult{}, errors.New("k6 summary export has no metrics")
	}

	result := summary.toResult()
	if result.ErrorRate < 0 || result.ErrorRate > 1 {
		return workloads.LoadRunResult{}, errors.Errorf("error rate %v out of [0, 1]", result.ErrorRate)
	}
	return result, nil
}

// ReadArtifact parses summary export stored in path.
func ReadArtifact(path string) (workloads.LoadRunResult, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return workloads.LoadRunResult{}, errors.Wrapf(ErrArtifactMissing, "%s", path)
	}
	if err != nil {
		return workloads.LoadRunResult{}, errors.Wrapf(err, "cannot open %s", path)
	}
	defer file.Close()

	result, err := ParseArtifact(file)
	if err != nil {
		return result, errors.Wrapf(err, "invalid artifact %s", path)
	}
	return result, nil
}

// Augment stores extra data under "custom_metrics" key of the artifact in
// path. Other content is preserved. The file is replaced atomically.
func Augment(path string, custom interface{}) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", path)
	}

	document := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &document); err != nil {
		return errors.Wrapf(err, "cannot decode %s", path)
	}
	encoded, err := json.Marshal(custom)
	if err != nil {
		return errors.Wrap(err, "cannot encode custom metrics")
	}
	document["custom_metrics"] = encoded

	output, err := json.MarshalIndent(document, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "cannot encode %s", path)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrapf(err, "cannot create temporary file next to %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(output); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "cannot write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "cannot sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "cannot replace %s", path)
}

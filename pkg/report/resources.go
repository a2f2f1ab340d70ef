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

package report

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
)

// Resources is the per-trial resource artifact.
type Resources struct {
	Iteration      int                        `json:"iteration"`
	Implementation string                     `json:"implementation"`
	Status         Status                     `json:"status"`
	Summary        metrics.ResourceSummary    `json:"summary"`
	Series         metrics.ResourceTimeSeries `json:"series,omitempty"`
}

// ResourcesFileName returns name of the artifact of a trial.
func ResourcesFileName(implementation string, iteration int) string {
	return fmt.Sprintf("resources_%s_%d.json", implementation, iteration)
}

// WriteResources writes resources artifact into dir and returns its path.
// The file is replaced atomically.
func WriteResources(dir string, resources Resources) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create %q", dir)
	}

	data, err := json.MarshalIndent(resources, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "cannot encode resources")
	}

	path := filepath.Join(dir, ResourcesFileName(resources.Implementation, resources.Iteration))
	tmp, err := ioutil.TempFile(dir, ".resources-*")
	if err != nil {
		return "", errors.Wrapf(err, "cannot create temporary file in %q", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "cannot write %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "cannot close %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrapf(err, "cannot move resources to %q", path)
	}
	return path, nil
}

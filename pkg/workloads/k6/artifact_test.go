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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

const summaryExportSample = `{
    "root_group": {"name": "", "path": "", "checks": {}},
    "metrics": {
        "http_req_duration": {
            "avg": 41.5, "min": 2.1, "med": 30.25, "max": 812.0,
            "p(75)": 55.5, "p(90)": 88.1, "p(95)": 123.45, "p(99)": 301.99
        },
        "http_reqs": {"count": 12000, "rate": 199.87},
        "error_rate": {"passes": 840, "fails": 11160, "value": 0.07},
        "http_req_failed": {"passes": 10, "fails": 11990, "value": 0.0008}
    }
}`

func TestParseArtifact(t *testing.T) {
	Convey("When parsing k6 summary export", t, func() {
		Convey("Complete document is mapped to load run result", func() {
			result, err := ParseArtifact(strings.NewReader(summaryExportSample))
			So(err, ShouldBeNil)
			So(result.Throughput, ShouldEqual, 199.87)
			So(result.Latency.Avg, ShouldEqual, 41.5)
			So(result.Latency.P50, ShouldEqual, 30.25)
			So(result.Latency.P75, ShouldEqual, 55.5)
			So(result.Latency.P90, ShouldEqual, 88.1)
			So(result.Latency.P95, ShouldEqual, 123.45)
			So(result.Latency.P99, ShouldEqual, 301.99)
			So(result.ErrorRate, ShouldEqual, 0.07)
		})

		Convey("Missing metrics default to zero", func() {
			result, err := ParseArtifact(strings.NewReader(`{"metrics": {"http_req_duration": {"p(95)": 10}}}`))
			So(err, ShouldBeNil)
			So(result.Latency.P95, ShouldEqual, 10)
			So(result.Latency.P99, ShouldEqual, 0)
			So(result.Throughput, ShouldEqual, 0)
			So(result.ErrorRate, ShouldEqual, 0)
		})

		Convey("Only the value key of error_rate is read", func() {
			result, err := ParseArtifact(strings.NewReader(`{"metrics": {"error_rate": {"rate": 0.5}}}`))
			So(err, ShouldBeNil)
			So(result.ErrorRate, ShouldEqual, 0)
		})

		Convey("Builtin http_req_failed is used without error_rate", func() {
			result, err := ParseArtifact(strings.NewReader(`{"metrics": {"http_req_failed": {"value": 0.25}}}`))
			So(err, ShouldBeNil)
			So(result.ErrorRate, ShouldEqual, 0.25)
		})

		Convey("Documents that are not summary exports are rejected", func() {
			for _, document := range []string{``, `{`, `[]`, `{"state": {}}`, `{"metrics": {"error_rate": {"value": 7}}}`} {
				_, err := ParseArtifact(strings.NewReader(document))
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestReadAndAugmentArtifact(t *testing.T) {
	Convey("With artifact on disk", t, func() {
		dir, err := ioutil.TempDir("", "k6")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, ArtifactName("ms_baseline", 1))

		Convey("Missing file reports ErrArtifactMissing", func() {
			_, err := ReadArtifact(path)
			So(errors.Cause(err), ShouldEqual, ErrArtifactMissing)
		})

		Convey("Augmenting keeps original metrics", func() {
			So(ioutil.WriteFile(path, []byte(summaryExportSample), 0644), ShouldBeNil)

			custom := map[string]interface{}{"summary": map[string]float64{"peak_memory_mb": 512.5}}
			So(Augment(path, custom), ShouldBeNil)

			result, err := ReadArtifact(path)
			So(err, ShouldBeNil)
			So(result.Latency.P95, ShouldEqual, 123.45)

			data, err := ioutil.ReadFile(path)
			So(err, ShouldBeNil)
			document := map[string]map[string]interface{}{}
			So(json.Unmarshal(data, &document), ShouldBeNil)
			So(document["custom_metrics"]["summary"], ShouldResemble, map[string]interface{}{"peak_memory_mb": 512.5})

			entries, err := ioutil.ReadDir(dir)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
		})
	})
}

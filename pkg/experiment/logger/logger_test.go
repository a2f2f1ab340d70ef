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

package logger

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInitialize(t *testing.T) {
	Convey("When initializing campaign logging", t, func() {
		results, err := ioutil.TempDir("", "results")
		So(err, ShouldBeNil)
		defer os.RemoveAll(results)
		defer logrus.SetOutput(os.Stderr)

		directory, logFile, err := Initialize(results, "/usr/bin/marketstat-bench", "c1")
		So(err, ShouldBeNil)
		defer logFile.Close()

		Convey("Campaign directory is named after application and campaign", func() {
			So(directory, ShouldEqual, filepath.Join(results, "marketstat-bench_c1"))
		})

		Convey("Log entries reach the log file", func() {
			logrus.Info("trial finished")
			content, err := ioutil.ReadFile(filepath.Join(directory, "marketstat-bench.log"))
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring, "trial finished")
			So(string(content), ShouldContainSubstring, "Starting campaign marketstat-bench with id c1")
		})
	})
}

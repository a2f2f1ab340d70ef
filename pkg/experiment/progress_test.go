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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProgress(t *testing.T) {
	Convey("Nil progress shows nothing and does not panic", t, func() {
		var progress *Progress
		So(func() {
			progress.Begin(1, 5, "BASELINE")
			progress.Done()
			progress.Finish()
		}, ShouldNotPanic)
	})

	Convey("Progress counts finished trials", t, func() {
		progress := NewProgress(3)
		progress.Begin(1, 1, "BASELINE")
		progress.Done()
		progress.Begin(1, 1, "DAPPER")
		progress.Done()
		So(progress.bar.Get(), ShouldEqual, 2)
		progress.Finish()
	})
}

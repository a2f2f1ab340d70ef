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
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics/mocks"
)

func TestUploaders(t *testing.T) {
	Convey("When sending record to many uploaders", t, func() {
		record := metrics.Record{CampaignID: "c1", Iteration: 1, Implementation: "BASELINE", Status: "SUCCESS"}
		first := new(mocks.Uploader)
		second := new(mocks.Uploader)

		Convey("Every uploader is attempted even if one fails", func() {
			first.On("SendMetrics", record).Return(errors.New("influx down")).Once()
			second.On("SendMetrics", record).Return(nil).Once()

			err := metrics.Uploaders{first, second}.SendMetrics(record)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "influx down")
			first.AssertExpectations(t)
			second.AssertExpectations(t)
		})

		Convey("No uploaders means nothing to do", func() {
			So(metrics.Uploaders{}.SendMetrics(record), ShouldBeNil)
		})
	})
}

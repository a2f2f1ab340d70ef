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

	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
)

func TestConfig(t *testing.T) {
	Convey("When validating campaign configuration", t, func() {
		implementations, err := stack.ParseImplementations([]string{"BASELINE:5055", "EF_SQL:5056"}, "ms", "MarketStat.API.{implementation}")
		So(err, ShouldBeNil)
		config := DefaultConfig()
		config.Implementations = implementations

		Convey("Defaults are valid", func() {
			So(config.Validate(), ShouldBeNil)
			So(config.ErrorBound, ShouldEqual, 0.05)
			So(config.Policy, ShouldEqual, BoundOnly)
		})

		Convey("Error bound must be a fraction", func() {
			config.ErrorBound = 5
			So(config.Validate(), ShouldNotBeNil)
			config.ErrorBound = 0
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("Implementations must not share ports", func() {
			config.Implementations[1].Port = config.Implementations[0].Port
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("Copy does not share implementations", func() {
			copied := config.copy()
			copied.Implementations[0].ID = "OTHER"
			So(config.Implementations[0].ID, ShouldEqual, "BASELINE")
		})
	})

	Convey("When parsing threshold policy", t, func() {
		policy, err := ParsePolicy("tool_authoritative")
		So(err, ShouldBeNil)
		So(policy, ShouldEqual, ToolAuthoritative)
		So(policy.String(), ShouldEqual, ToolAuthoritativeName)

		_, err = ParsePolicy("strict")
		So(err, ShouldNotBeNil)
	})
}

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

package errcollection

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorCollection(t *testing.T) {
	Convey("When using ErrorCollection", t, func() {
		var errCollection ErrorCollection

		Convey("When no error was passed, GetErrIfAny should return nil", func() {
			So(errCollection.GetErrIfAny(), ShouldBeNil)
		})

		Convey("When nil error was passed, GetErrIfAny should return nil", func() {
			errCollection.Add(nil)
			errCollection.Addf(nil, "teardown of %s", "ms_baseline")
			So(errCollection.GetErrIfAny(), ShouldBeNil)
		})

		Convey("When one error was passed, it is returned unchanged", func() {
			original := errors.New("compose down failed")
			errCollection.Add(original)
			So(errCollection.GetErrIfAny(), ShouldEqual, original)
		})

		Convey("When multiple errors were passed, messages are combined", func() {
			errCollection.Add(errors.New("test error"))
			errCollection.Addf(errors.New("exit code 1"), "teardown of %s", "ms_dapper")
			errCollection.Add(errors.New("test error2"))
			So(errCollection.GetErrIfAny().Error(), ShouldEqual,
				"test error;\n teardown of ms_dapper: exit code 1;\n test error2")
		})
	})
}

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

package netutil

import (
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNetutil(t *testing.T) {
	Convey("With a local listener", t, func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		port := listener.Addr().(*net.TCPAddr).Port

		Convey("Port should be reported as listening and not free", func() {
			So(IsListening(listener.Addr().String(), time.Second), ShouldBeTrue)
			So(IsPortFree(port), ShouldBeFalse)
			listener.Close()
		})

		Convey("After closing the listener the port should be free", func() {
			listener.Close()
			So(IsListening(listener.Addr().String(), 100*time.Millisecond), ShouldBeFalse)
			So(IsPortFree(port), ShouldBeTrue)
		})
	})
}

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

package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	. "github.com/smartystreets/goconvey/convey"
)

func handleFor(url string) *stack.Handle {
	return &stack.Handle{Config: stack.ImplementationConfig{ID: "BASELINE"}, BaseURL: url}
}

func TestHTTPProbe(t *testing.T) {
	Convey("While probing instance readiness", t, func() {
		var requests int32
		readyAfter := int32(3)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != DefaultPath {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if atomic.AddInt32(&requests, 1) < atomic.LoadInt32(&readyAfter) {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"openapi":"3.0.1"}`))
		}))
		defer server.Close()

		probe := NewHTTPProbe("", 10*time.Millisecond)

		Convey("Instance becoming ready within timeout is reported ready", func() {
			So(probe.AwaitReady(context.Background(), handleFor(server.URL), 2*time.Second), ShouldBeTrue)
			So(atomic.LoadInt32(&requests), ShouldEqual, 3)
		})

		Convey("Instance never ready within timeout is reported not ready", func() {
			atomic.StoreInt32(&readyAfter, 1000000)
			start := time.Now()
			So(probe.AwaitReady(context.Background(), handleFor(server.URL), 100*time.Millisecond), ShouldBeFalse)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
		})

		Convey("Wrong path is never ready", func() {
			probe := NewHTTPProbe("/health", 10*time.Millisecond)
			So(probe.AwaitReady(context.Background(), handleFor(server.URL), 50*time.Millisecond), ShouldBeFalse)
		})

		Convey("Refused connection counts as not ready yet", func() {
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			So(err, ShouldBeNil)
			address := listener.Addr().String()
			listener.Close()

			So(probe.AwaitReady(context.Background(), handleFor("http://"+address), 50*time.Millisecond), ShouldBeFalse)
		})

		Convey("Cancelled context ends probing with not ready", func() {
			atomic.StoreInt32(&readyAfter, 1000000)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(probe.AwaitReady(ctx, handleFor(server.URL), time.Minute), ShouldBeFalse)
		})

		Convey("Missing handle is never ready", func() {
			So(probe.AwaitReady(context.Background(), nil, time.Second), ShouldBeFalse)
		})
	})
}

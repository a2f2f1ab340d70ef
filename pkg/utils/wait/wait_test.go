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

package wait

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUntil(t *testing.T) {
	Convey("While waiting for a condition", t, func() {
		var calls int32

		Convey("Condition satisfied on third attempt should end waiting", func() {
			err := Until(context.Background(), time.Second, 10*time.Millisecond, func(context.Context) error {
				if atomic.AddInt32(&calls, 1) < 3 {
					return errors.New("not yet")
				}
				return nil
			})
			So(err, ShouldBeNil)
			So(atomic.LoadInt32(&calls), ShouldEqual, 3)
		})

		Convey("Condition never satisfied should time out with last error", func() {
			start := time.Now()
			err := Until(context.Background(), 50*time.Millisecond, 10*time.Millisecond, func(context.Context) error {
				atomic.AddInt32(&calls, 1)
				return errors.New("connection refused")
			})
			So(err, ShouldNotBeNil)
			So(IsTimeout(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "connection refused")
			So(time.Since(start), ShouldBeLessThan, time.Second)
			So(atomic.LoadInt32(&calls), ShouldBeGreaterThan, 1)
		})

		Convey("Cancelled parent context should stop waiting with its error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()

			err := Until(ctx, time.Minute, 5*time.Millisecond, func(context.Context) error {
				return errors.New("not yet")
			})
			So(err, ShouldEqual, context.Canceled)
			So(IsTimeout(err), ShouldBeFalse)
		})

		Convey("Invalid interval is rejected", func() {
			err := Until(context.Background(), time.Second, 0, func(context.Context) error { return nil })
			So(err, ShouldNotBeNil)
		})
	})
}

func TestAttemptsFor(t *testing.T) {
	Convey("Attempts should cover the whole timeout", t, func() {
		So(attemptsFor(90*time.Second, time.Second), ShouldEqual, 91)
		So(attemptsFor(1500*time.Millisecond, time.Second), ShouldEqual, 3)
		So(attemptsFor(0, time.Second), ShouldEqual, 1)
	})
}

func TestSleep(t *testing.T) {
	Convey("Sleep should return early when context is done", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(Sleep(ctx, time.Hour), ShouldEqual, context.Canceled)
		So(Sleep(context.Background(), time.Millisecond), ShouldBeNil)
	})
}

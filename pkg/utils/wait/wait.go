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

// Package wait provides bounded polling with cancellation, used wherever an
// external resource has to reach a state (readiness, free ports).
package wait

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned (wrapped) by Until when condition was not met in time.
var ErrTimeout = errors.New("timed out")

// Condition is checked repeatedly by Until. It returns nil when satisfied.
// The context passed in is bounded by the overall timeout.
type Condition func(ctx context.Context) error

// Until checks condition every interval until it succeeds, timeout elapses
// or ctx is done. On timeout the returned error wraps ErrTimeout and carries
// the last condition error. When ctx is done first its error is returned.
func Until(ctx context.Context, timeout, interval time.Duration, condition Condition) error {
	if interval <= 0 {
		return errors.Errorf("invalid polling interval %s", interval)
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	err := retry.Do(
		func() error {
			lastErr = condition(deadlineCtx)
			return lastErr
		},
		retry.Context(deadlineCtx),
		retry.Attempts(attemptsFor(timeout, interval)),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logrus.Debugf("wait: attempt %d not satisfied: %v", n+1, err)
		}),
	)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if lastErr == nil {
		lastErr = err
	}
	return errors.Wrapf(ErrTimeout, "condition not met within %s: %v", timeout, lastErr)
}

// IsTimeout reports whether err was caused by Until running out of time.
func IsTimeout(err error) bool {
	return errors.Cause(err) == ErrTimeout
}

// attemptsFor returns number of checks that fit in timeout, at least one.
func attemptsFor(timeout, interval time.Duration) uint {
	if timeout <= 0 {
		return 1
	}
	attempts := timeout / interval
	if timeout%interval != 0 {
		attempts++
	}
	return uint(attempts) + 1
}

// Sleep pauses for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

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

// Package health gates load generation on instance readiness.
package health

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/wait"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPath is the readiness endpoint of the benchmarked API.
	DefaultPath = "/swagger/v1/swagger.json"
	// DefaultInterval between readiness checks.
	DefaultInterval = time.Second

	requestTimeout = 5 * time.Second
)

// Probe waits for an instance to become ready.
type Probe interface {
	// AwaitReady returns true when the instance became ready within timeout.
	// It returns false on timeout or cancellation and never fails otherwise.
	AwaitReady(ctx context.Context, handle *stack.Handle, timeout time.Duration) bool
}

// HTTPProbe considers instance ready when GET on Path returns 200.
type HTTPProbe struct {
	Path     string
	Interval time.Duration
	Client   *http.Client
}

// NewHTTPProbe returns probe checking path every interval. Zero values fall
// back to defaults.
func NewHTTPProbe(path string, interval time.Duration) *HTTPProbe {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &HTTPProbe{
		Path:     path,
		Interval: interval,
		Client:   &http.Client{Timeout: requestTimeout},
	}
}

// AwaitReady implements Probe.
func (p *HTTPProbe) AwaitReady(ctx context.Context, handle *stack.Handle, timeout time.Duration) bool {
	if handle == nil {
		return false
	}
	url := handle.BaseURL + p.Path
	log := logrus.WithFields(logrus.Fields{"implementation": handle.Config.ID, "url": url})
	log.Debugf("waiting up to %s for readiness", timeout)

	start := time.Now()
	err := wait.Until(ctx, timeout, p.Interval, func(ctx context.Context) error {
		return p.check(ctx, url)
	})
	if err != nil {
		log.Warnf("instance not ready: %v", err)
		return false
	}

	log.Infof("%s ready after %s", handle.Config.ID, time.Since(start).Round(time.Millisecond))
	return true
}

func (p *HTTPProbe) check(ctx context.Context, url string) error {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "invalid readiness url %q", url)
	}

	response, err := p.Client.Do(request.WithContext(ctx))
	if err != nil {
		return err
	}
	defer response.Body.Close()
	// Drain so the connection can be reused.
	io.Copy(ioutil.Discard, response.Body)

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("readiness check returned %s", response.Status)
	}
	return nil
}

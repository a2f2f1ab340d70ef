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

// Package stack provisions and tears down isolated runtime instances of the
// implementations under test.
package stack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ImplementationPlaceholder is replaced by implementation identifier in
// service label templates.
const ImplementationPlaceholder = "{implementation}"

// ImplementationConfig describes one implementation under comparison.
// It is defined before a campaign starts and never changes.
type ImplementationConfig struct {
	// ID is the implementation identifier, e.g. BASELINE.
	ID string
	// Port is the host port the instance is published on.
	Port int
	// Namespace isolates runtime resources of the instance (compose project).
	Namespace string
	// ServiceLabel identifies the instance in telemetry.
	ServiceLabel string
}

func (c ImplementationConfig) String() string {
	return fmt.Sprintf("%s(:%d)", c.ID, c.Port)
}

// ParseImplementations builds configs from "ID:PORT" entries. Identifiers and
// ports must be unique. Namespace is "<prefix>_<lowercase id>".
func ParseImplementations(entries []string, namespacePrefix, labelTemplate string) ([]ImplementationConfig, error) {
	if len(entries) == 0 {
		return nil, errors.New("no implementations configured")
	}

	configs := make([]ImplementationConfig, 0, len(entries))
	ids := map[string]bool{}
	ports := map[int]string{}
	for _, entry := range entries {
		fields := strings.Split(strings.TrimSpace(entry), ":")
		if len(fields) != 2 || fields[0] == "" {
			return nil, errors.Errorf("invalid implementation %q, expected ID:PORT", entry)
		}
		id := strings.ToUpper(fields[0])
		port, err := strconv.Atoi(fields[1])
		if err != nil || port <= 0 || port > 65535 {
			return nil, errors.Errorf("invalid port in implementation %q", entry)
		}
		if ids[id] {
			return nil, errors.Errorf("implementation %s defined twice", id)
		}
		if other, ok := ports[port]; ok {
			return nil, errors.Errorf("port %d used by both %s and %s", port, other, id)
		}
		ids[id] = true
		ports[port] = id

		namespace := strings.ToLower(id)
		if namespacePrefix != "" {
			namespace = namespacePrefix + "_" + namespace
		}
		configs = append(configs, ImplementationConfig{
			ID:           id,
			Port:         port,
			Namespace:    namespace,
			ServiceLabel: strings.Replace(labelTemplate, ImplementationPlaceholder, id, -1),
		})
	}
	return configs, nil
}

// Handle represents a provisioned (or partially provisioned) instance.
type Handle struct {
	Config ImplementationConfig
	// BaseURL is the address the instance is reachable at from the host.
	BaseURL       string
	ProvisionedAt time.Time

	once        sync.Once
	teardownErr error
}

// NewHandle returns handle for an instance of config reachable on host.
func NewHandle(config ImplementationConfig, host string) *Handle {
	return &Handle{
		Config:        config,
		BaseURL:       fmt.Sprintf("http://%s:%d", host, config.Port),
		ProvisionedAt: time.Now(),
	}
}

// release runs teardown at most once per handle and returns its result on
// every call.
func (h *Handle) release(teardown func() error) error {
	h.once.Do(func() {
		h.teardownErr = teardown()
	})
	return h.teardownErr
}

// Controller starts and stops runtime instances.
type Controller interface {
	// Provision starts an instance of the implementation. The returned handle
	// is non-nil even when error is returned, so that whatever was partially
	// started can be torn down.
	Provision(ctx context.Context, config ImplementationConfig) (*Handle, error)
	// Teardown removes everything Provision created. It is idempotent, accepts
	// nil handle and never panics. Errors are only reported.
	Teardown(ctx context.Context, handle *Handle) error
}

// StartupError is returned by Provision when an instance could not be started.
type StartupError struct {
	Implementation string
	Err            error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("cannot start %s: %v", e.Implementation, e.Err)
}

// Cause implements errors.Cause interface.
func (e *StartupError) Cause() error {
	return e.Err
}

// Unwrap supports errors.Is and errors.As.
func (e *StartupError) Unwrap() error {
	return e.Err
}

// IsStartupError returns true when err is (or wraps) *StartupError.
func IsStartupError(err error) bool {
	var startupErr *StartupError
	return errors.As(err, &startupErr)
}

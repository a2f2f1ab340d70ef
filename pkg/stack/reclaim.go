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

package stack

import (
	"context"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/netutil"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/wait"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultReclaimTimeout  = 15 * time.Second
	defaultReclaimInterval = 500 * time.Millisecond
)

// PortReclaimer makes sure nothing left by a previous run holds the port of
// an implementation.
type PortReclaimer interface {
	Reclaim(ctx context.Context, config ImplementationConfig) error
}

// NopReclaimer does nothing.
type NopReclaimer struct{}

// Reclaim implements PortReclaimer.
func (NopReclaimer) Reclaim(context.Context, ImplementationConfig) error {
	return nil
}

// portChecker reports whether a local port can be bound.
type portChecker func(port int) bool

// waitForFreePort blocks until port is free or timeout elapses.
func waitForFreePort(ctx context.Context, port int, isFree portChecker, timeout time.Duration) error {
	return wait.Until(ctx, timeout, defaultReclaimInterval, func(context.Context) error {
		if isFree(port) {
			return nil
		}
		return errors.Errorf("port %d is still bound", port)
	})
}

// ProcessReclaimer kills local processes listening on the port. It finds
// them with lsof.
type ProcessReclaimer struct {
	executor executor.Executor
	kill     func(pid int) error
	isFree   portChecker
	timeout  time.Duration
}

// NewProcessReclaimer returns reclaimer using lsof run by exec.
func NewProcessReclaimer(exec executor.Executor) *ProcessReclaimer {
	return &ProcessReclaimer{
		executor: exec,
		kill: func(pid int) error {
			return syscall.Kill(pid, syscall.SIGKILL)
		},
		isFree:  netutil.IsPortFree,
		timeout: defaultReclaimTimeout,
	}
}

// Reclaim implements PortReclaimer.
func (r *ProcessReclaimer) Reclaim(ctx context.Context, config ImplementationConfig) error {
	if r.isFree(config.Port) {
		return nil
	}

	// lsof exits with 1 when nothing matches, so exit code is not checked.
	result, err := executor.Run(ctx, r.executor, executor.NewCommand("lsof", "-t", "-i:"+strconv.Itoa(config.Port)))
	if err != nil {
		return errors.Wrapf(err, "cannot list processes bound to port %d", config.Port)
	}

	for _, pid := range parsePIDs(result.Stdout) {
		if pid == os.Getpid() {
			continue
		}
		logrus.Warnf("killing stale process %d holding port %d", pid, config.Port)
		if err := r.kill(pid); err != nil && err != syscall.ESRCH {
			return errors.Wrapf(err, "cannot kill process %d", pid)
		}
	}

	return waitForFreePort(ctx, config.Port, r.isFree, r.timeout)
}

func parsePIDs(output string) []int {
	pids := []int{}
	seen := map[int]bool{}
	for _, field := range strings.Fields(output) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

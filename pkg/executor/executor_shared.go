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

package executor

import (
	"context"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result is an outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// WaitWithContext blocks until the task terminates. When ctx is done first
// the task is stopped and ctx error is returned.
func WaitWithContext(ctx context.Context, handle TaskHandle) error {
	terminated := make(chan struct{})
	go func() {
		handle.Wait(0)
		close(terminated)
	}()

	select {
	case <-terminated:
		return nil
	case <-ctx.Done():
		if err := handle.Stop(); err != nil {
			logrus.Errorf("cannot stop task on cancellation: %v", err)
		}
		<-terminated
		return ctx.Err()
	}
}

// Run executes the command, waits for its termination and returns its exit
// code with the captured output. Output files are erased afterwards.
// Non-zero exit code is not an error, the caller decides what it means.
func Run(ctx context.Context, executor Executor, command Command) (Result, error) {
	handle, err := executor.Execute(command)
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	defer func() {
		if err := handle.Clean(); err != nil {
			logrus.Warnf("cannot clean after %q: %v", command.Name, err)
		}
		if err := handle.EraseOutput(); err != nil {
			logrus.Warnf("cannot erase output of %q: %v", command.Name, err)
		}
	}()

	if err := WaitWithContext(ctx, handle); err != nil {
		return Result{ExitCode: -1}, errors.Wrapf(err, "%s interrupted", command.Name)
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	result := Result{ExitCode: exitCode}
	result.Stdout, _ = readOutput(handle.StdoutFile)
	result.Stderr, _ = readOutput(handle.StderrFile)
	return result, nil
}

// RunChecked is Run that treats non-zero exit code as an error carrying the
// tail of stderr.
func RunChecked(ctx context.Context, executor Executor, command Command) (Result, error) {
	result, err := Run(ctx, executor, command)
	if err != nil {
		return result, err
	}
	if result.ExitCode != 0 {
		return result, errors.Errorf("%s failed with exit code %d: %s",
			command, result.ExitCode, tail(result.Stderr, 512))
	}
	return result, nil
}

func readOutput(open func() (*os.File, error)) (string, error) {
	file, err := open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	data, err := ioutil.ReadAll(file)
	return string(data), err
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

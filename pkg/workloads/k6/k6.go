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

// Package k6 runs k6 load scenarios as a one-off service of the
// implementation's compose project.
package k6

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ThresholdExitCode is the exit code k6 uses when a threshold failed.
const ThresholdExitCode = 99

// Config configures the k6 invoker.
type Config struct {
	// Compose describes the project k6 service belongs to.
	Compose stack.ComposeConfig
	// Service is the compose service running k6 image.
	Service string
	// APIURL is the address of the API from inside the project network.
	// Empty means the handle's BaseURL.
	APIURL string
	// ContainerResultsDir is where k6 writes the summary export.
	ContainerResultsDir string
	// HostResultsDir is the host directory mounted at ContainerResultsDir.
	HostResultsDir string
	// ThresholdExitCode distinguishes threshold violations from crashes.
	ThresholdExitCode int
}

// DefaultConfig returns config matching the benchmark compose file.
func DefaultConfig() Config {
	return Config{
		Compose:             stack.DefaultComposeConfig(),
		Service:             "k6",
		APIURL:              "http://api:8080/api",
		ContainerResultsDir: "/results",
		HostResultsDir:      "results",
		ThresholdExitCode:   ThresholdExitCode,
	}
}

// K6 implements workloads.Invoker.
type K6 struct {
	config   Config
	executor executor.Executor
}

// New returns k6 invoker running commands with exec.
func New(config Config, exec executor.Executor) *K6 {
	if config.ThresholdExitCode == 0 {
		config.ThresholdExitCode = ThresholdExitCode
	}
	return &K6{config: config, executor: exec}
}

// ArtifactName returns file name of the summary export of a trial.
func ArtifactName(namespace string, iteration int) string {
	return fmt.Sprintf("report_%s_%d.json", namespace, iteration)
}

func (k *K6) command(handle *stack.Handle, target workloads.Target, artifact string) executor.Command {
	apiURL := k.config.APIURL
	if apiURL == "" {
		apiURL = handle.BaseURL
	}
	return stack.ComposeCommand(k.config.Compose, handle.Config.Namespace,
		"run", "--rm",
		"-e", "API_URL="+apiURL,
		k.config.Service,
		"run",
		"--summary-export="+path.Join(k.config.ContainerResultsDir, artifact),
		target.Script,
	)
}

func (k *K6) statusOf(exitCode int) workloads.ExitStatus {
	switch exitCode {
	case 0:
		return workloads.NORMAL
	case k.config.ThresholdExitCode:
		return workloads.THRESHOLD_VIOLATION
	}
	return workloads.CRASH
}

// Run implements workloads.Invoker. Presence of a parseable artifact, not
// the exit code, decides whether Result is set.
func (k *K6) Run(ctx context.Context, handle *stack.Handle, target workloads.Target) workloads.RunOutcome {
	name := ArtifactName(handle.Config.Namespace, target.Iteration)
	outcome := workloads.RunOutcome{
		Status:       workloads.CRASH,
		ExitCode:     -1,
		ArtifactPath: filepath.Join(k.config.HostResultsDir, name),
	}
	log := logrus.WithFields(logrus.Fields{"implementation": handle.Config.ID, "iteration": target.Iteration})

	// Artifact left by an earlier campaign must not be mistaken for this one.
	if err := os.Remove(outcome.ArtifactPath); err != nil && !os.IsNotExist(err) {
		outcome.Err = errors.Wrapf(err, "cannot remove stale artifact %s", outcome.ArtifactPath)
		return outcome
	}

	command := k.command(handle, target, name)
	log.Debugf("running load: %s", command)

	result, err := executor.Run(ctx, k.executor, command)
	if err != nil {
		outcome.Err = errors.Wrap(err, "k6 did not complete")
		return outcome
	}
	outcome.ExitCode = result.ExitCode
	outcome.Status = k.statusOf(result.ExitCode)

	parsed, err := ReadArtifact(outcome.ArtifactPath)
	if err != nil {
		outcome.Err = err
		if outcome.Status == workloads.CRASH {
			outcome.Err = errors.Wrapf(err, "k6 exited with %d: %s", result.ExitCode, lastLine(result.Stderr))
		}
		log.Warnf("no usable artifact (%s): %v", outcome.Status, outcome.Err)
		return outcome
	}

	outcome.Result = &parsed
	log.Debugf("load finished with %s (exit code %d)", outcome.Status, outcome.ExitCode)
	return outcome
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	return "no stderr output"
}

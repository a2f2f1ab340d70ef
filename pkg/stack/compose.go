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
	"fmt"
	"time"

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ComposeConfig configures docker compose based stacks.
type ComposeConfig struct {
	// Binary is the docker CLI, "docker" by default.
	Binary string
	// File is the compose file describing the stack.
	File string
	// Dir is the working directory for compose invocations.
	Dir string
	// Services started by Provision. Empty means all services of the file.
	Services []string
	// Host the published ports are reachable at.
	Host string
}

// DefaultComposeConfig returns config for the benchmark compose file.
func DefaultComposeConfig() ComposeConfig {
	return ComposeConfig{
		Binary:   "docker",
		File:     "docker-compose.benchmark.yml",
		Dir:      ".",
		Services: []string{"api", "db"},
		Host:     "localhost",
	}
}

// Compose provisions every implementation as a separate docker compose
// project named after its namespace.
type Compose struct {
	config    ComposeConfig
	executor  executor.Executor
	reclaimer PortReclaimer
}

// NewCompose returns compose controller. Nil reclaimer disables port reclamation.
func NewCompose(config ComposeConfig, exec executor.Executor, reclaimer PortReclaimer) *Compose {
	if config.Binary == "" {
		config.Binary = "docker"
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if reclaimer == nil {
		reclaimer = NopReclaimer{}
	}
	return &Compose{config: config, executor: exec, reclaimer: reclaimer}
}

// ComposeCommand returns "docker compose -f <file> -p <project> <args...>".
func ComposeCommand(config ComposeConfig, project string, args ...string) executor.Command {
	composeArgs := []string{"compose", "-f", config.File}
	if project != "" {
		composeArgs = append(composeArgs, "-p", project)
	}
	return executor.Command{
		Name: config.Binary,
		Args: append(composeArgs, args...),
		Dir:  config.Dir,
	}
}

// Provision reclaims the port of the implementation and starts its project.
func (c *Compose) Provision(ctx context.Context, config ImplementationConfig) (*Handle, error) {
	handle := NewHandle(config, c.config.Host)
	log := logrus.WithFields(logrus.Fields{"implementation": config.ID, "project": config.Namespace})

	if err := c.reclaimer.Reclaim(ctx, config); err != nil {
		return handle, &StartupError{Implementation: config.ID, Err: errors.Wrapf(err, "port %d is still in use", config.Port)}
	}

	command := ComposeCommand(c.config, config.Namespace, append([]string{"up", "-d"}, c.config.Services...)...).
		WithEnv(
			"REPO_IMPLEMENTATION="+config.ID,
			fmt.Sprintf("API_PORT=%d", config.Port),
		)

	log.Debugf("provisioning: %s", command)
	if _, err := executor.RunChecked(ctx, c.executor, command); err != nil {
		return handle, &StartupError{Implementation: config.ID, Err: err}
	}

	handle.ProvisionedAt = time.Now()
	log.Infof("stack %s started on port %d", config.Namespace, config.Port)
	return handle, nil
}

// Teardown removes the project with its volumes.
func (c *Compose) Teardown(ctx context.Context, handle *Handle) error {
	if handle == nil {
		return nil
	}
	return handle.release(func() error {
		command := ComposeCommand(c.config, handle.Config.Namespace, "down", "-v", "--remove-orphans")
		logrus.Debugf("tearing down: %s", command)
		if _, err := executor.RunChecked(ctx, c.executor, command); err != nil {
			logrus.Errorf("teardown of %s failed: %v", handle.Config.Namespace, err)
			return errors.Wrapf(err, "teardown of %s", handle.Config.Namespace)
		}
		logrus.Debugf("stack %s removed", handle.Config.Namespace)
		return nil
	})
}

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

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Infrastructure is the supporting stack shared by all trials of a campaign,
// such as the telemetry backend.
type Infrastructure interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ComposeInfrastructure runs shared infrastructure as one compose project.
type ComposeInfrastructure struct {
	config   ComposeConfig
	project  string
	executor executor.Executor
}

// NewComposeInfrastructure returns infrastructure defined by compose file in config.
func NewComposeInfrastructure(config ComposeConfig, project string, exec executor.Executor) *ComposeInfrastructure {
	if config.Binary == "" {
		config.Binary = "docker"
	}
	return &ComposeInfrastructure{config: config, project: project, executor: exec}
}

// Start brings the shared stack up.
func (i *ComposeInfrastructure) Start(ctx context.Context) error {
	command := ComposeCommand(i.config, i.project, append([]string{"up", "-d"}, i.config.Services...)...)
	logrus.Infof("starting shared infrastructure %s (%s)", i.project, i.config.File)
	if _, err := executor.RunChecked(ctx, i.executor, command); err != nil {
		return errors.Wrapf(err, "cannot start shared infrastructure %s", i.project)
	}
	return nil
}

// Stop removes the shared stack with its volumes.
func (i *ComposeInfrastructure) Stop(ctx context.Context) error {
	command := ComposeCommand(i.config, i.project, "down", "-v")
	logrus.Infof("stopping shared infrastructure %s", i.project)
	if _, err := executor.RunChecked(ctx, i.executor, command); err != nil {
		return errors.Wrapf(err, "cannot stop shared infrastructure %s", i.project)
	}
	return nil
}

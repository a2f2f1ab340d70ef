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
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/netutil"
)

// composeProjectLabel is set by docker compose on every container of a project.
const composeProjectLabel = "com.docker.compose.project"

// containerAPI is the part of docker client used by DockerReclaimer.
type containerAPI interface {
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
}

// DockerReclaimer removes containers left over by a previous run: those
// belonging to the implementation's compose project and those publishing its port.
type DockerReclaimer struct {
	api     containerAPI
	isFree  portChecker
	timeout time.Duration
}

// NewDockerReclaimer connects to docker daemon configured by environment
// (DOCKER_HOST and friends).
func NewDockerReclaimer() (*DockerReclaimer, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "cannot create docker client")
	}
	return &DockerReclaimer{api: cli, isFree: netutil.IsPortFree, timeout: defaultReclaimTimeout}, nil
}

// Reclaim implements PortReclaimer.
func (r *DockerReclaimer) Reclaim(ctx context.Context, config ImplementationConfig) error {
	containers, err := r.api.ContainerList(ctx, types.ContainerListOptions{All: true})
	if err != nil {
		return errors.Wrap(err, "cannot list containers")
	}

	for _, container := range stale(containers, config) {
		logrus.Warnf("removing stale container %s (%v) of %s", shortID(container.ID), container.Names, config.ID)
		err := r.api.ContainerRemove(ctx, container.ID, types.ContainerRemoveOptions{Force: true, RemoveVolumes: true})
		if err != nil && !client.IsErrNotFound(err) {
			return errors.Wrapf(err, "cannot remove container %s", shortID(container.ID))
		}
	}

	return waitForFreePort(ctx, config.Port, r.isFree, r.timeout)
}

func stale(containers []types.Container, config ImplementationConfig) []types.Container {
	var found []types.Container
	for _, container := range containers {
		if container.Labels[composeProjectLabel] == config.Namespace {
			found = append(found, container)
			continue
		}
		for _, port := range container.Ports {
			if int(port.PublicPort) == config.Port {
				found = append(found, container)
				break
			}
		}
	}
	return found
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

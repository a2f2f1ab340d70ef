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

package metadata

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
)

// Keys in the platform metrics map.
const (
	CPUModelNameKey  = "cpu_model"
	CPUCountKey      = "cpu_count"
	KernelVersionKey = "kernel_version"
	DockerVersionKey = "docker_version"
	OSKey            = "os"
)

// GetPlatformMetrics returns platform characteristics of the benchmark host.
// If a value could not be retrieved it is left empty.
func GetPlatformMetrics(ctx context.Context, exec executor.Executor) map[string]string {
	platformMetrics := map[string]string{
		CPUCountKey: strconv.Itoa(runtime.NumCPU()),
		OSKey:       runtime.GOOS + "/" + runtime.GOARCH,
	}

	collect := func(key string, get func() (string, error)) {
		value, err := get()
		if err != nil {
			logrus.Warnf("Failed to get %s platform metric, skipping: %v", key, err)
		}
		platformMetrics[key] = value
	}

	collect(CPUModelNameKey, func() (string, error) { return CPUModelName("/proc/cpuinfo") })
	collect(KernelVersionKey, func() (string, error) { return readContents("/proc/version") })
	collect(DockerVersionKey, func() (string, error) { return DockerVersion(ctx, exec) })

	return platformMetrics
}

// CPUModelName returns first 'model name' found in cpuinfo file.
func CPUModelName(cpuinfo string) (string, error) {
	file, err := os.Open(cpuinfo)
	if err != nil {
		return "", errors.Wrapf(err, "cannot open %s", cpuinfo)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		chunks := strings.SplitN(scanner.Text(), ":", 2)
		if len(chunks) != 2 {
			continue
		}
		if strings.TrimSpace(chunks[0]) == "model name" {
			return strings.TrimSpace(chunks[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.Errorf("did not find 'model name' in %s", cpuinfo)
}

// DockerVersion returns server version reported by docker CLI.
func DockerVersion(ctx context.Context, exec executor.Executor) (string, error) {
	result, err := executor.RunChecked(ctx, exec, executor.NewCommand("docker", "version", "--format", "{{.Server.Version}}"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

func readContents(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", path)
	}
	return strings.TrimSpace(string(content)), nil
}

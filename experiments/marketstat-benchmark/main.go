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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AndresRojas1512/marketstat-bench/pkg/cassandra"
	"github.com/AndresRojas1512/marketstat-bench/pkg/conf"
	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/AndresRojas1512/marketstat-bench/pkg/experiment"
	"github.com/AndresRojas1512/marketstat-bench/pkg/experiment/logger"
	"github.com/AndresRojas1512/marketstat-bench/pkg/health"
	"github.com/AndresRojas1512/marketstat-bench/pkg/influxdb"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metadata"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics/prometheus"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics/uploaders"
	"github.com/AndresRojas1512/marketstat-bench/pkg/report"
	"github.com/AndresRojas1512/marketstat-bench/pkg/stack"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/uuid"
	"github.com/AndresRojas1512/marketstat-bench/pkg/visualization"
	"github.com/AndresRojas1512/marketstat-bench/pkg/workloads/k6"
)

func main() {
	os.Exit(run())
}

func run() int {
	campaignStart := time.Now()
	errorLevelEnabled := configure()

	campaignID, err := uuid.New()
	if err != nil {
		logrus.Errorf("Cannot generate campaign id: %v", err)
		return exFailure
	}

	campaignDir, logFile, err := logger.Initialize(resultsDirFlag.Value(), conf.AppName(), campaignID)
	if err != nil {
		logrus.Errorf("Cannot initialize logging: %v", err)
		return exFailure
	}
	defer logFile.Close()

	// Campaign ID is the handle for looking up the results later.
	fmt.Println(campaignID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := executor.NewLocal(campaignDir)

	campaignMetadata, err := metadata.New(campaignID, metadataConfig())
	if err != nil {
		logrus.Errorf("Cannot connect to metadata database: %v", err)
		return exFailure
	}
	if err := metadata.RecordRuntimeEnv(ctx, campaignMetadata, exec, campaignStart); err != nil {
		logrus.Warnf("Cannot record runtime environment: %v", err)
	}

	implementations, err := stack.ParseImplementations(implementationsFlag.Value(), projectPrefixFlag.Value(), serviceLabelFlag.Value())
	if err != nil {
		logrus.Errorf("Invalid implementations: %v", err)
		return exUsage
	}
	policy, err := experiment.ParsePolicy(thresholdPolicyFlag.Value())
	if err != nil {
		logrus.Errorf("Invalid threshold policy: %v", err)
		return exUsage
	}

	composeConfig := stack.DefaultComposeConfig()
	composeConfig.File = composeFileFlag.Value()
	composeConfig.Dir = workdirFlag.Value()

	components := experiment.Components{
		Stack:    stack.NewCompose(composeConfig, exec, portReclaimer(exec)),
		Probe:    health.NewHTTPProbe(healthPathFlag.Value(), healthIntervalFlag.Value()),
		Metadata: campaignMetadata,
		Augment:  k6.Augment,
	}

	if file := monitoringComposeFileFlag.Value(); file != "" {
		monitoringConfig := composeConfig
		monitoringConfig.File = file
		monitoringConfig.Services = nil
		components.Infrastructure = stack.NewComposeInfrastructure(monitoringConfig, projectPrefixFlag.Value()+"_monitoring", exec)
	}

	k6Config := k6.DefaultConfig()
	k6Config.Compose = composeConfig
	k6Config.Service = k6ServiceFlag.Value()
	k6Config.APIURL = apiURLFlag.Value()
	k6Config.ContainerResultsDir = k6ResultsDirFlag.Value()
	k6Config.HostResultsDir = hostPath(k6HostResultsDirFlag.Value())
	components.Invoker = k6.New(k6Config, exec)

	query, err := prometheus.New(prometheusAddrFlag.Value())
	if err != nil {
		logrus.Errorf("Cannot create Prometheus client: %v", err)
		return exUsage
	}
	collectorConfig := metrics.DefaultCollectorConfig()
	collectorConfig.Buffer = metricsBufferFlag.Value()
	collectorConfig.SettleDelay = metricsSettleFlag.Value()
	collectorConfig.Step = metricsStepFlag.Value()
	components.Collector = metrics.NewCollector(query, metrics.DefaultMetrics(), collectorConfig)

	csvWriter := report.NewCSVWriter(filepath.Join(resultsDirFlag.Value(), reportFileFlag.Value()))
	if err := csvWriter.EnsureInitialized(); err != nil {
		logrus.Errorf("Cannot initialize report: %v", err)
		return exFailure
	}
	defer csvWriter.Close()
	components.Report = report.Tee{
		Primary: csvWriter,
		Mirrors: []report.Sink{report.MetadataSink{Metadata: campaignMetadata}},
	}

	metricsUploaders, err := resourceUploaders()
	if err != nil {
		logrus.Errorf("Cannot create resource uploaders: %v", err)
		return exFailure
	}
	if len(metricsUploaders) > 0 {
		components.Uploader = metricsUploaders
	}

	if errorLevelEnabled {
		components.Progress = experiment.NewProgress(len(implementations) * iterationsFlag.Value())
	}

	config := experiment.DefaultConfig()
	config.CampaignID = campaignID
	config.Implementations = implementations
	config.Iterations = iterationsFlag.Value()
	config.ErrorBound = errorBoundFlag.Value()
	config.Policy = policy
	config.Parallel = parallelFlag.Value()
	config.Script = k6ScriptFlag.Value()
	config.HealthTimeout = healthTimeoutFlag.Value()
	config.Stabilization = stabilizationFlag.Value()
	config.TeardownTimeout = teardownTimeoutFlag.Value()
	config.ArtifactsDir = campaignDir

	orchestrator, err := experiment.New(config, components)
	if err != nil {
		logrus.Errorf("Cannot create campaign: %v", err)
		return exUsage
	}

	summary, err := orchestrator.Run(ctx)
	visualization.PrintCampaignSummary(os.Stdout, visualization.CampaignMetadata{
		CampaignID: campaignID,
		ReportPath: csvWriter.Path(),
		LogDir:     campaignDir,
	}, summary.Rows)

	switch {
	case err == nil:
		logrus.Infof("Campaign %s finished in %s", campaignID, time.Since(campaignStart).Round(time.Second))
		return exOK
	case errors.Cause(err) == context.Canceled:
		logrus.Warnf("Campaign %s interrupted, %d trials reported", campaignID, len(summary.Rows))
		return exInterrupted
	default:
		logrus.Errorf("Campaign %s failed (%s): %v", campaignID, experiment.KindOf(err), err)
		return exFailure
	}
}

func portReclaimer(exec executor.Executor) stack.PortReclaimer {
	switch portReclaimerFlag.Value() {
	case "none":
		return stack.NopReclaimer{}
	case "process":
		return stack.NewProcessReclaimer(exec)
	}
	reclaimer, err := stack.NewDockerReclaimer()
	if err != nil {
		logrus.Warnf("Docker API unavailable, falling back to process port reclamation: %v", err)
		return stack.NewProcessReclaimer(exec)
	}
	return reclaimer
}

func resourceUploaders() (metrics.Uploaders, error) {
	var result metrics.Uploaders
	if seriesUploadFlag.Value() {
		config := influxDBConfig()
		config.CreateDatabase = true
		session, err := influxdb.Connect(config)
		if err != nil {
			return nil, err
		}
		result = append(result, uploaders.NewInfluxDB(session, config.Database))
	}
	if cassandraUploadFlag.Value() {
		session, err := cassandra.Connect(cassandraConfig())
		if err != nil {
			return nil, err
		}
		uploader, err := uploaders.NewCassandra(session)
		if err != nil {
			return nil, err
		}
		result = append(result, uploader)
	}
	return result, nil
}

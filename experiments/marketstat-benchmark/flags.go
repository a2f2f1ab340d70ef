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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AndresRojas1512/marketstat-bench/pkg/cassandra"
	"github.com/AndresRojas1512/marketstat-bench/pkg/conf"
	"github.com/AndresRojas1512/marketstat-bench/pkg/influxdb"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metadata"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/errutil"
)

// Exit codes.
const (
	exOK          = 0
	exFailure     = 1
	exUsage       = 64
	exInterrupted = 130
)

var (
	implementationsFlag = conf.NewSliceFlag("implementations", "Comma-separated list of ID:PORT implementations under comparison", "BASELINE:5055", "EF_SQL:5056", "DAPPER:5057")
	iterationsFlag      = conf.NewIntFlag("iterations", "Number of iterations, every implementation is run once per iteration", 5)
	errorBoundFlag      = conf.NewFloat64Flag("error_bound", "Error rate (fraction) at and above which a trial is THRESHOLD_FAIL", 0.05)
	thresholdPolicyFlag = conf.NewStringFlag("threshold_policy", "bound_only or tool_authoritative (k6 threshold violation forces THRESHOLD_FAIL)", "bound_only")
	parallelFlag        = conf.NewBoolFlag("parallel", "Run all implementations of an iteration concurrently", false)

	workdirFlag               = conf.NewStringFlag("workdir", "Directory docker compose is run from", ".")
	composeFileFlag           = conf.NewStringFlag("compose_file", "Compose file of the benchmarked stack", "docker-compose.benchmark.yml")
	monitoringComposeFileFlag = conf.NewStringFlag("monitoring_compose_file", "Compose file of the shared monitoring stack, empty to skip it", "docker-compose.monitoring.yml")
	projectPrefixFlag         = conf.NewStringFlag("project_prefix", "Prefix of compose project names", "ms")
	serviceLabelFlag          = conf.NewStringFlag("service_label", "Telemetry service label template, {implementation} is replaced by implementation ID", "MarketStat.API.{implementation}")
	portReclaimerFlag         = conf.NewStringFlag("port_reclaimer", "How stale owners of implementation ports are removed: docker, process or none", "docker")

	resultsDirFlag = conf.NewStringFlag("results_dir", "Directory for the report, logs and trial artifacts", "results")
	reportFileFlag = conf.NewStringFlag("report_file", "Name of the CSV report inside results directory", "benchmark_results.csv")

	k6ScriptFlag         = conf.NewStringFlag("k6_script", "k6 script path as seen by the k6 container", "/scripts/stress-test.js")
	k6ServiceFlag        = conf.NewStringFlag("k6_service", "Compose service running k6", "k6")
	k6ResultsDirFlag     = conf.NewStringFlag("k6_results_dir", "Directory k6 writes summary exports to inside its container", "/results")
	k6HostResultsDirFlag = conf.NewStringFlag("k6_host_results_dir", "Host directory mounted at k6_results_dir, relative to workdir", "results")
	apiURLFlag           = conf.NewStringFlag("api_url", "API address as seen by the k6 container", "http://api:8080/api")

	healthPathFlag      = conf.NewStringFlag("health_path", "Readiness endpoint of the API", "/swagger/v1/swagger.json")
	healthTimeoutFlag   = conf.NewDurationFlag("health_timeout", "Time the API has to become ready", 90*time.Second)
	healthIntervalFlag  = conf.NewDurationFlag("health_interval", "Interval between readiness checks", time.Second)
	stabilizationFlag   = conf.NewDurationFlag("stabilization", "Pause between readiness and load", 3*time.Second)
	teardownTimeoutFlag = conf.NewDurationFlag("teardown_timeout", "Time limit of a single stack teardown", 2*time.Minute)

	prometheusAddrFlag = conf.NewStringFlag("prometheus_addr", "Address of Prometheus HTTP API", "http://localhost:9091")
	metricsSettleFlag  = conf.NewDurationFlag("metrics_settle", "Delay before querying metrics of a finished trial", 5*time.Second)
	metricsBufferFlag  = conf.NewDurationFlag("metrics_buffer", "Extension of the metrics window past trial end", 10*time.Second)
	metricsStepFlag    = conf.NewDurationFlag("metrics_step", "Resolution of exported time series", time.Second)

	metadataDBFlag        = conf.NewStringFlag("metadata_db", "Campaign metadata backend: none, cassandra or influxdb", "none")
	cassandraAddrFlag     = conf.NewStringFlag("cassandra_addr", "Address of Cassandra", "127.0.0.1")
	cassandraPortFlag     = conf.NewIntFlag("cassandra_port", "Port of Cassandra", 9042)
	cassandraKeyspaceFlag = conf.NewStringFlag("cassandra_keyspace", "Cassandra keyspace", "marketstat_bench")
	cassandraUserFlag     = conf.NewStringFlag("cassandra_username", "Cassandra user", "")
	cassandraPassFlag     = conf.NewStringFlag("cassandra_password", "Cassandra password", "")
	cassandraUploadFlag   = conf.NewBoolFlag("cassandra_upload", "Store trial resources in Cassandra trial_resources table", false)
	influxDBAddrFlag      = conf.NewStringFlag("influxdb_addr", "Address of InfluxDB HTTP API", "http://127.0.0.1:8086")
	influxDBNameFlag      = conf.NewStringFlag("influxdb_db", "InfluxDB database", "marketstat_bench")
	influxDBUserFlag      = conf.NewStringFlag("influxdb_username", "InfluxDB user", "")
	influxDBPassFlag      = conf.NewStringFlag("influxdb_password", "InfluxDB password", "")
	seriesUploadFlag      = conf.NewBoolFlag("series_upload", "Upload trial resources and time series to InfluxDB", false)

	// Names include dash to exclude them from dumping.
	dumpConfigFlag         = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)
	dumpConfigCampaignFlag = conf.NewStringFlag("config-dump-campaign-id", "Dump configuration recorded by the campaign of given ID.", "")
)

func cassandraConfig() cassandra.Config {
	config := cassandra.DefaultConfig()
	config.Address = cassandraAddrFlag.Value()
	config.Port = cassandraPortFlag.Value()
	config.KeyspaceName = cassandraKeyspaceFlag.Value()
	config.Username = cassandraUserFlag.Value()
	config.Password = cassandraPassFlag.Value()
	return config
}

func influxDBConfig() influxdb.Config {
	config := influxdb.DefaultConfig()
	config.Address = influxDBAddrFlag.Value()
	config.Database = influxDBNameFlag.Value()
	config.Username = influxDBUserFlag.Value()
	config.Password = influxDBPassFlag.Value()
	return config
}

func metadataConfig() metadata.Config {
	return metadata.Config{
		Backend:   metadataDBFlag.Value(),
		Cassandra: cassandraConfig(),
		InfluxDB:  influxDBConfig(),
	}
}

// hostPath resolves path relative to workdir.
func hostPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workdirFlag.Value(), path)
}

// configure parses flags and sets log level. It exits when configuration
// dump was requested. Returns true when progress bar should be shown instead
// of progress lines.
func configure() bool {
	conf.SetAppName("marketstat-bench")
	conf.SetHelp("Runs load test campaign of MarketStat API implementations and reports per-trial results.")

	if err := conf.ParseFlags(); err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(exUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		if previous := dumpConfigCampaignFlag.Value(); previous != "" {
			recorded, err := metadata.New(previous, metadataConfig())
			errutil.Check(err)
			flags, err := recorded.GetByKind(metadata.TypeFlags)
			errutil.CheckWithContext(err, "cannot read flags of campaign "+previous)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(exOK)
	}

	return logrus.GetLevel() == logrus.ErrorLevel
}

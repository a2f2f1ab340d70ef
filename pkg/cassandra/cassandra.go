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

// Package cassandra opens sessions to the Cassandra cluster storing campaign
// metadata and trial results.
package cassandra

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
)

// Config encodes the settings for connecting to the database.
type Config struct {
	Address           string
	Port              int
	KeyspaceName      string
	CreateKeyspace    bool
	Username          string
	Password          string
	ConnectionTimeout time.Duration
	Timeout           time.Duration
	SslEnabled        bool
	SslCAPath         string
	SslCertPath       string
	SslKeyPath        string
	SslHostValidation bool
}

// DefaultConfig returns config of a local single node cluster.
func DefaultConfig() Config {
	return Config{
		Address:           "127.0.0.1",
		Port:              9042,
		KeyspaceName:      "marketstat_bench",
		CreateKeyspace:    true,
		ConnectionTimeout: 5 * time.Second,
		Timeout:           10 * time.Second,
	}
}

func sslOptions(config Config) *gocql.SslOptions {
	return &gocql.SslOptions{
		CaPath:                 config.SslCAPath,
		CertPath:               config.SslCertPath,
		KeyPath:                config.SslKeyPath,
		EnableHostVerification: config.SslHostValidation,
	}
}

// clusterConfig prepares configuration of the Cassandra cluster.
func clusterConfig(config Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Address)
	if config.Port != 0 {
		cluster.Port = config.Port
	}
	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.ProtoVersion = 4
	cluster.ConnectTimeout = config.ConnectionTimeout
	cluster.Timeout = config.Timeout

	if config.Username != "" && config.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}
	if config.SslEnabled {
		cluster.SslOpts = sslOptions(config)
	}
	return cluster
}

func createKeyspace(cluster *gocql.ClusterConfig, keyspace string) error {
	session, err := cluster.CreateSession()
	if err != nil {
		return errors.Wrap(err, "cannot create session for creating keyspace")
	}
	defer session.Close()

	query := fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};", keyspace)
	return errors.Wrap(session.Query(query).Exec(), "cannot create keyspace")
}

// Connect creates a session bound to the configured keyspace, creating the
// keyspace first when requested.
func Connect(config Config) (*gocql.Session, error) {
	if config.KeyspaceName == "" {
		return nil, errors.New("cassandra keyspace name is empty")
	}

	cluster := clusterConfig(config)
	if config.CreateKeyspace {
		if err := createKeyspace(cluster, config.KeyspaceName); err != nil {
			return nil, err
		}
	}

	cluster.Keyspace = config.KeyspaceName
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to cassandra at %s", config.Address)
	}
	return session, nil
}

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

// Package influxdb opens HTTP sessions to the InfluxDB instance used for
// campaign metadata and resource time series.
package influxdb

import (
	"fmt"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"
)

// Config holds configuration for InfluxDB.
type Config struct {
	Address            string
	Database           string
	Username           string
	Password           string
	InsecureSkipVerify bool
	CreateDatabase     bool
}

// DefaultConfig returns configuration of local InfluxDB.
func DefaultConfig() Config {
	return Config{
		Address:        "http://127.0.0.1:8086",
		Database:       "marketstat_bench",
		CreateDatabase: true,
	}
}

// Connect returns client for configured instance. Database is created when
// requested.
func Connect(config Config) (client.Client, error) {
	if config.Database == "" {
		return nil, errors.New("influxdb database name is empty")
	}

	session, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:               config.Address,
		Username:           config.Username,
		Password:           config.Password,
		InsecureSkipVerify: config.InsecureSkipVerify,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create influx client for %s", config.Address)
	}

	if config.CreateDatabase {
		if err := Exec(session, fmt.Sprintf("CREATE DATABASE %s", config.Database), ""); err != nil {
			session.Close()
			return nil, errors.Wrapf(err, "cannot create influx database %q", config.Database)
		}
	}
	return session, nil
}

// Exec runs a command and reports both transport and response errors.
func Exec(session client.Client, command, database string) error {
	_, err := Query(session, command, database)
	return err
}

// Query runs a query and returns the response only if it has no error.
func Query(session client.Client, command, database string) (*client.Response, error) {
	response, err := session.Query(client.Query{Command: command, Database: database})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query influxdb with %q", command)
	}
	if response.Error() != nil {
		return nil, errors.Wrapf(response.Error(), "response from influxdb contained error for %q", command)
	}
	return response, nil
}

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

// Package metadata records what a benchmark campaign was run with and what
// each trial ended with, so that results can be traced back later.
package metadata

import (
	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/cassandra"
	"github.com/AndresRojas1512/marketstat-bench/pkg/influxdb"
)

// Predefined types of metadata.
// Kind groups metadata by their common characteristics, e.g. TypeFlags holds
// the flags passed to the binary and TypeTrial the outcome of a single trial.
// Kind is just a string so callers may define their own.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
	TypeTrial    = "trial"
)

// Supported backends.
const (
	BackendNone      = "none"
	BackendCassandra = "cassandra"
	BackendInfluxDB  = "influxdb"
)

// Metadata interface defines methods which must be supported by DB backend.
type Metadata interface {
	// Record stores a key and value and associates with the campaign id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates with the campaign id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves single metadata type from the database.
	GetByKind(kind string) (map[string]string, error)
	// Clear deletes all metadata entries associated with the current campaign id.
	Clear() error
}

// Config selects and configures the backend.
type Config struct {
	Backend   string
	Cassandra cassandra.Config
	InfluxDB  influxdb.Config
}

// New initializes metadata for given campaign with configured backend.
func New(campaignID string, config Config) (Metadata, error) {
	switch config.Backend {
	case BackendNone, "":
		return NewNone(), nil
	case BackendCassandra:
		session, err := cassandra.Connect(config.Cassandra)
		if err != nil {
			return nil, err
		}
		return NewCassandra(campaignID, session)
	case BackendInfluxDB:
		session, err := influxdb.Connect(config.InfluxDB)
		if err != nil {
			return nil, err
		}
		return NewInfluxDB(campaignID, session, config.InfluxDB.Database), nil
	}
	return nil, errors.Errorf("unsupported database for metadata: %q", config.Backend)
}

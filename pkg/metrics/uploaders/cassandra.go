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

package uploaders

import (
	"encoding/json"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
)

const createTrialResourcesTable = `CREATE TABLE IF NOT EXISTS trial_resources (
	campaign_id text,
	iteration int,
	implementation text,
	status text,
	started timestamp,
	finished timestamp,
	peak_memory_bytes double,
	allocated_bytes double,
	cpu_seconds double,
	gc_pause_seconds double,
	series text,
	PRIMARY KEY ((campaign_id), iteration, implementation)
);`

const insertTrialResources = `INSERT INTO trial_resources (campaign_id, iteration, implementation, status,
	started, finished, peak_memory_bytes, allocated_bytes, cpu_seconds, gc_pause_seconds, series)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type cassandra struct {
	session *gocql.Session
}

// NewCassandra creates trial_resources table when missing and returns
// uploader inserting one row per trial.
func NewCassandra(session *gocql.Session) (metrics.Uploader, error) {
	if err := session.Query(createTrialResourcesTable).Exec(); err != nil {
		return nil, errors.Wrap(err, "cannot create trial_resources table")
	}
	return &cassandra{session: session}, nil
}

// insertValues returns bind values of insertTrialResources.
func insertValues(record metrics.Record) ([]interface{}, error) {
	series := ""
	if len(record.Series) > 0 {
		encoded, err := json.Marshal(record.Series)
		if err != nil {
			return nil, errors.Wrap(err, "cannot encode series")
		}
		series = string(encoded)
	}
	return []interface{}{
		record.CampaignID, record.Iteration, record.Implementation, record.Status,
		record.Window.Start, record.Window.End,
		record.Summary.PeakMemoryBytes, record.Summary.AllocatedBytes,
		record.Summary.CPUSeconds, record.Summary.GCPauseSeconds,
		series,
	}, nil
}

// SendMetrics implements metrics.Uploader.
func (c *cassandra) SendMetrics(record metrics.Record) error {
	values, err := insertValues(record)
	if err != nil {
		return err
	}
	return errors.Wrapf(c.session.Query(insertTrialResources, values...).Exec(),
		"cannot save resources of %s iteration %d", record.Implementation, record.Iteration)
}

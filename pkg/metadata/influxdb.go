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
	"fmt"
	"strings"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/influxdb"
)

const influxMeasurement = "metadata"

// InfluxDB keeps the InfluxDB session alive, the database and the campaign id
// to tag the metadata with.
type InfluxDB struct {
	campaignID string
	database   string
	session    client.Client
}

// NewInfluxDB returns the Metadata helper from a campaign id and an open session.
func NewInfluxDB(campaignID string, session client.Client, database string) Metadata {
	return &InfluxDB{campaignID: campaignID, database: database, session: session}
}

// storeMap writes metadata as a single point tagged with kind and campaign id.
func (m *InfluxDB) storeMap(metadata map[string]string, kind string) error {
	if len(metadata) == 0 {
		return nil
	}

	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: m.database})
	if err != nil {
		return errors.Wrapf(err, "creation of batch points for InfluxDB failed for metadata kind %q", kind)
	}

	tags := map[string]string{"kind": kind, "campaign_id": m.campaignID}
	fields := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		fields[key] = value
	}
	point, err := client.NewPoint(influxMeasurement, tags, fields, time.Now())
	if err != nil {
		return errors.Wrapf(err, "cannot create new point, kind %q", kind)
	}
	batchPoints.AddPoint(point)

	return errors.Wrapf(m.session.Write(batchPoints), "cannot publish metadata of kind %q", kind)
}

// Record stores a key and value and associates with the campaign id.
func (m *InfluxDB) Record(key, value, kind string) error {
	return m.storeMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates with the campaign id.
func (m *InfluxDB) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind retrieves single kind from the database. If duplicates are found
// then the last one is returned. Returns error if nothing was recorded.
func (m *InfluxDB) GetByKind(kind string) (map[string]string, error) {
	// Grouping by both tags drops them from the columns.
	cmd := fmt.Sprintf("SELECT last(*) FROM %s WHERE campaign_id='%s' AND kind='%s' GROUP BY campaign_id,kind", influxMeasurement, m.campaignID, kind)
	response, err := influxdb.Query(m.session, cmd, m.database)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot retrieve metadata of kind %q for campaign %s", kind, m.campaignID)
	}

	metadata := map[string]string{}
	for _, result := range response.Results {
		for _, row := range result.Series {
			for _, value := range row.Values {
				for idx, cell := range value {
					// Column 0 is the timestamp. Results may be sparse.
					if cell == nil || idx == 0 {
						continue
					}
					column := strings.TrimPrefix(row.Columns[idx], "last_")
					metadata[column] = fmt.Sprint(cell)
				}
			}
		}
	}
	if len(metadata) == 0 {
		return nil, errors.Errorf("cannot retrieve metadata for campaign %q and %q kind: nothing found", m.campaignID, kind)
	}
	return metadata, nil
}

// Clear deletes all metadata entries associated with the current campaign id.
func (m *InfluxDB) Clear() error {
	cmd := fmt.Sprintf("DROP SERIES FROM %s WHERE campaign_id='%s'", influxMeasurement, m.campaignID)
	return errors.Wrapf(influxdb.Exec(m.session, cmd, m.database), "cannot clear metadata for campaign %s", m.campaignID)
}

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

// Package uploaders exports trial resources to external stores.
package uploaders

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metrics"
)

// Measurements written to InfluxDB.
const (
	SummaryMeasurement = "trial_resources"
	SeriesMeasurement  = "trial_series"
)

type influxDB struct {
	session  client.Client
	database string
}

// NewInfluxDB returns uploader writing to database through the session.
func NewInfluxDB(session client.Client, database string) metrics.Uploader {
	return &influxDB{session: session, database: database}
}

func recordTags(record metrics.Record) map[string]string {
	return map[string]string{
		"campaign_id":    record.CampaignID,
		"implementation": record.Implementation,
		"iteration":      strconv.Itoa(record.Iteration),
		"status":         record.Status,
	}
}

// SendMetrics implements metrics.Uploader. Summary is a single point at the
// end of the trial, every series sample is a point at its absolute time.
func (u *influxDB) SendMetrics(record metrics.Record) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: u.database, Precision: "ms"})
	if err != nil {
		return errors.Wrap(err, "creation of batch points for InfluxDB failed")
	}

	tags := recordTags(record)
	summary, err := client.NewPoint(SummaryMeasurement, tags, map[string]interface{}{
		"peak_memory_bytes": record.Summary.PeakMemoryBytes,
		"allocated_bytes":   record.Summary.AllocatedBytes,
		"cpu_seconds":       record.Summary.CPUSeconds,
		"gc_pause_seconds":  record.Summary.GCPauseSeconds,
	}, record.Window.End)
	if err != nil {
		return errors.Wrap(err, "cannot create summary point")
	}
	batchPoints.AddPoint(summary)

	for name, points := range record.Series {
		seriesTags := recordTags(record)
		seriesTags["metric"] = name
		for _, p := range points {
			at := record.Window.Start.Add(time.Duration(p.Seconds * float64(time.Second)))
			point, err := client.NewPoint(SeriesMeasurement, seriesTags, map[string]interface{}{"value": p.Value}, at)
			if err != nil {
				return errors.Wrapf(err, "cannot create point of %q series", name)
			}
			batchPoints.AddPoint(point)
		}
	}

	return errors.Wrapf(u.session.Write(batchPoints), "cannot upload resources of %s iteration %d",
		record.Implementation, record.Iteration)
}

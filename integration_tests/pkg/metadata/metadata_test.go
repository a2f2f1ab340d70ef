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
	"testing"

	"github.com/AndresRojas1512/marketstat-bench/pkg/cassandra"
	"github.com/AndresRojas1512/marketstat-bench/pkg/influxdb"
	"github.com/AndresRojas1512/marketstat-bench/pkg/metadata"
	"github.com/AndresRojas1512/marketstat-bench/pkg/utils/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func testBackend(config metadata.Config) {
	id, err := uuid.New()
	So(err, ShouldBeNil)

	campaignMetadata, err := metadata.New(id, config)
	So(err, ShouldBeNil)
	defer campaignMetadata.Clear()

	Convey("Record metadata to DB shall succeed on all kinds", func() {
		for _, kind := range []string{metadata.TypeEnviron, metadata.TypeFlags, metadata.TypePlatform, "custom"} {
			So(campaignMetadata.Record("key", "value-"+kind, kind), ShouldBeNil)

			retMap, err := campaignMetadata.GetByKind(kind)
			So(err, ShouldBeNil)
			So(retMap, ShouldResemble, map[string]string{"key": "value-" + kind})
		}

		_, err := campaignMetadata.GetByKind("abcd")
		So(err, ShouldNotBeNil)
	})

	Convey("Groups recorded separately are merged", func() {
		So(campaignMetadata.RecordMap(map[string]string{"campaign_id": id, "iterations": "5"}, metadata.TypeEmpty), ShouldBeNil)
		So(campaignMetadata.RecordMap(map[string]string{"host": "bench-1"}, metadata.TypeEmpty), ShouldBeNil)

		retMap, err := campaignMetadata.GetByKind(metadata.TypeEmpty)
		So(err, ShouldBeNil)
		So(retMap["iterations"], ShouldEqual, "5")
		So(retMap["host"], ShouldEqual, "bench-1")
	})

	Convey("Clear removes campaign metadata", func() {
		So(campaignMetadata.Record("key", "value", metadata.TypePlatform), ShouldBeNil)
		So(campaignMetadata.Clear(), ShouldBeNil)

		_, err := campaignMetadata.GetByKind(metadata.TypePlatform)
		So(err, ShouldNotBeNil)
	})
}

func TestCassandraMetadata(t *testing.T) {
	Convey("While using Cassandra metadata backend", t, func() {
		testBackend(metadata.Config{Backend: metadata.BackendCassandra, Cassandra: cassandra.DefaultConfig()})
	})
}

func TestInfluxDBMetadata(t *testing.T) {
	Convey("While using InfluxDB metadata backend", t, func() {
		testBackend(metadata.Config{Backend: metadata.BackendInfluxDB, InfluxDB: influxdb.DefaultConfig()})
	})
}

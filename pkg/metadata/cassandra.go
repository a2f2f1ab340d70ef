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
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
)

const createMetadataTable = `CREATE TABLE IF NOT EXISTS metadata (
	campaign_id text,
	kind text,
	time timestamp,
	timeuuid TIMEUUID,
	metadata map<text,text>,
	PRIMARY KEY ((campaign_id), timeuuid)
) WITH CLUSTERING ORDER BY (timeuuid DESC);`

// Cassandra keeps the Cassandra session alive and the campaign id to tag the
// metadata with.
type Cassandra struct {
	campaignID string
	session    *gocql.Session
}

// NewCassandra returns the Metadata helper from a campaign id and an open session.
func NewCassandra(campaignID string, session *gocql.Session) (Metadata, error) {
	if err := session.Query(createMetadataTable).Exec(); err != nil {
		return nil, errors.Wrap(err, "cannot create metadata table")
	}
	return &Cassandra{campaignID: campaignID, session: session}, nil
}

func (m *Cassandra) storeMap(metadata map[string]string, kind string) error {
	err := m.session.Query(`INSERT INTO metadata (campaign_id, kind, time, timeuuid, metadata) VALUES (?, ?, ?, ?, ?)`,
		m.campaignID, kind, time.Now(), gocql.TimeUUID(), metadata).Exec()
	return errors.Wrapf(err, "cannot publish metadata of kind %q", kind)
}

// Record stores a key and value and associates with the campaign id.
func (m *Cassandra) Record(key, value, kind string) error {
	return m.storeMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates with the campaign id.
func (m *Cassandra) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind retrieves single kind from the database. Groups recorded
// separately are merged, newer values win. Returns error if no group found.
func (m *Cassandra) GetByKind(kind string) (map[string]string, error) {
	var metadata map[string]string
	merged := map[string]string{}
	groups := 0

	// Rows come newest first.
	iter := m.session.Query(`SELECT metadata FROM metadata WHERE campaign_id = ? AND kind = ? ALLOW FILTERING`, m.campaignID, kind).Iter()
	for iter.Scan(&metadata) {
		groups++
		for key, value := range metadata {
			if _, found := merged[key]; !found {
				merged[key] = value
			}
		}
		metadata = nil
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(err, "cannot retrieve metadata of kind %q", kind)
	}

	if groups == 0 {
		return nil, errors.Errorf("cannot retrieve metadata for campaign %q and %q kind: nothing found", m.campaignID, kind)
	}
	return merged, nil
}

// Clear deletes all metadata entries associated with the current campaign id.
func (m *Cassandra) Clear() error {
	return errors.Wrap(m.session.Query(`DELETE FROM metadata WHERE campaign_id = ?`, m.campaignID).Exec(), "cannot clear metadata")
}

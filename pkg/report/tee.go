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

package report

import (
	"github.com/sirupsen/logrus"

	"github.com/AndresRojas1512/marketstat-bench/pkg/metadata"
)

// Tee appends rows to Primary and then to every mirror. Only Primary failures
// are returned, mirror failures are logged.
type Tee struct {
	Primary Sink
	Mirrors []Sink
}

// Append implements Sink.
func (t Tee) Append(row Row) error {
	if err := t.Primary.Append(row); err != nil {
		return err
	}
	for _, mirror := range t.Mirrors {
		if err := mirror.Append(row); err != nil {
			logrus.Warnf("Cannot mirror %s iteration %d: %v", row.Implementation, row.Iteration, err)
		}
	}
	return nil
}

// MetadataSink records rows as trial metadata.
type MetadataSink struct {
	Metadata metadata.Metadata
}

// Append implements Sink.
func (s MetadataSink) Append(row Row) error {
	return s.Metadata.RecordMap(row.Map(), metadata.TypeTrial)
}

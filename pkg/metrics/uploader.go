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

package metrics

import (
	errcollection "github.com/AndresRojas1512/marketstat-bench/pkg/utils/err_collection"
)

// Record is the resource outcome of a single trial sent to external stores.
type Record struct {
	CampaignID     string
	Iteration      int
	Implementation string
	Status         string
	Window         Window
	Summary        ResourceSummary
	Series         ResourceTimeSeries
}

// Uploader sends trial resources to a store.
type Uploader interface {
	SendMetrics(Record) error
}

// Uploaders sends every record to all of its members.
type Uploaders []Uploader

// SendMetrics implements Uploader. All members are attempted.
func (u Uploaders) SendMetrics(record Record) error {
	var errs errcollection.ErrorCollection
	for _, uploader := range u {
		errs.Add(uploader.SendMetrics(record))
	}
	return errs.GetErrIfAny()
}

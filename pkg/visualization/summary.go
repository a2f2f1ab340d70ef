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

// Package visualization renders campaign results for the console.
package visualization

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/AndresRojas1512/marketstat-bench/pkg/report"
)

var statuses = []report.Status{
	report.StatusSuccess,
	report.StatusThresholdFail,
	report.StatusFailed,
	report.StatusCrashed,
}

// CampaignMetadata identifies the campaign a summary belongs to.
type CampaignMetadata struct {
	CampaignID string
	ReportPath string
	LogDir     string
}

// String returns a printable header of the summary.
func (m CampaignMetadata) String() string {
	return fmt.Sprintf("Campaign id: %s\nReport: %s\nLogs: %s", m.CampaignID, m.ReportPath, m.LogDir)
}

// StatusCounts returns number of trials per implementation and status.
func StatusCounts(rows []report.Row) map[string]map[report.Status]int {
	counts := map[string]map[report.Status]int{}
	for _, row := range rows {
		if counts[row.Implementation] == nil {
			counts[row.Implementation] = map[report.Status]int{}
		}
		counts[row.Implementation][row.Status]++
	}
	return counts
}

// PrintCampaignSummary prints every trial of the campaign followed by outcome
// counts per implementation.
func PrintCampaignSummary(w io.Writer, campaign CampaignMetadata, rows []report.Row) {
	fmt.Fprintln(w, campaign.String())

	trials := tablewriter.NewWriter(w)
	trials.SetHeader([]string{"Iteration", "Implementation", "Status", "Req/s", "P95", "Error %", "Max memory MB", "CPU s"})
	trials.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, row := range rows {
		record := row.Record()
		trials.Append([]string{
			record[0], record[1], record[2], record[3], record[8], record[10], record[11], record[14],
		})
	}
	trials.Render()

	counts := StatusCounts(rows)
	implementations := make([]string, 0, len(counts))
	for implementation := range counts {
		implementations = append(implementations, implementation)
	}
	sort.Strings(implementations)

	header := []string{"Implementation"}
	for _, status := range statuses {
		header = append(header, string(status))
	}
	outcomes := tablewriter.NewWriter(w)
	outcomes.SetHeader(header)
	for _, implementation := range implementations {
		line := []string{implementation}
		for _, status := range statuses {
			line = append(line, strconv.Itoa(counts[implementation][status]))
		}
		outcomes.Append(line)
	}
	outcomes.Render()
}

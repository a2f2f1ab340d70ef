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

package experiment

import (
	"fmt"
	"sync"

	"gopkg.in/cheggaaa/pb.v1"
)

// Progress shows a console progress bar of the campaign. It is meant for
// runs with log level error, when no progress lines are logged.
// Nil *Progress is valid and shows nothing.
type Progress struct {
	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewProgress starts a bar of total trials.
func NewProgress(total int) *Progress {
	bar := pb.StartNew(total)
	bar.ShowCounters = true
	bar.ShowTimeLeft = true
	return &Progress{bar: bar}
}

// Begin shows trial being run.
func (p *Progress) Begin(iteration, iterations int, implementation string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Prefix(fmt.Sprintf("[%02d / %02d] %s ", iteration, iterations, implementation))
	// Changes to progress bar should be applied immediately.
	p.bar.AlwaysUpdate = true
	p.bar.Update()
	p.bar.AlwaysUpdate = false
}

// Done advances the bar by one trial.
func (p *Progress) Done() {
	if p == nil {
		return
	}
	p.bar.Increment()
}

// Finish stops the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	p.bar.Finish()
}

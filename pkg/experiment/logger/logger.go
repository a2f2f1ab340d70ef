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

// Package logger prepares the campaign directory and routes logrus output to
// both the console and a log file inside it.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TimestampFormat of log entries.
const TimestampFormat = "2006-01-02 15:04:05.100"

// CampaignDir returns directory of a campaign inside resultsDir.
func CampaignDir(resultsDir, appName, campaignID string) string {
	return filepath.Join(resultsDir, fmt.Sprintf("%s_%s", filepath.Base(appName), campaignID))
}

// Initialize creates campaign directory and configures logrus to write to
// <dir>/<app>.log and stderr. The returned file should be closed at exit.
func Initialize(resultsDir, appName, campaignID string) (string, *os.File, error) {
	directory := CampaignDir(resultsDir, appName, campaignID)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", nil, errors.Wrapf(err, "cannot create campaign directory %q", directory)
	}

	logPath := filepath.Join(directory, filepath.Base(appName)+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create log file %q", logPath)
	}

	// Setup logging set to both output and logFile.
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: TimestampFormat})
	logrus.SetOutput(io.MultiWriter(logFile, os.Stderr))

	logrus.Infof("Working directory %q", directory)
	logrus.Info("Starting campaign ", filepath.Base(appName), " with id ", campaignID)
	return directory, logFile, nil
}

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

package executor

import (
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

func createExecutorOutputFiles(command Command, outputRoot string) (stdout, stderr *os.File, err error) {
	if command.Name == "" {
		return nil, nil, errors.New("empty command name")
	}

	if outputRoot == "" {
		outputRoot = os.TempDir()
	}
	outputDir, err := ioutil.TempDir(outputRoot, filepath.Base(command.Name)+"_")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot create output directory for %q", command.Name)
	}

	stdoutFileName := path.Join(outputDir, "stdout")
	stdout, err = os.Create(stdoutFileName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot create %q", stdoutFileName)
	}

	stderr, err = os.Create(path.Join(outputDir, "stderr"))
	if err != nil {
		stdout.Close()
		os.RemoveAll(outputDir)
		return nil, nil, errors.Wrapf(err, "cannot create stderr file in %q", outputDir)
	}

	return stdout, stderr, nil
}

func removeOutputFiles(stdout, stderr *os.File) error {
	if err := os.Remove(stdout.Name()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove %q", stdout.Name())
	}
	if err := os.Remove(stderr.Name()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove %q", stderr.Name())
	}
	// Directory is removed only when empty.
	os.Remove(path.Dir(stdout.Name()))
	return nil
}

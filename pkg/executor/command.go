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
	"strconv"
	"strings"
)

// Command describes a single process invocation. Arguments are passed to the
// process as they are, no shell is involved.
type Command struct {
	// Name of the binary, resolved through PATH when not absolute.
	Name string
	Args []string
	// Dir is the working directory. Empty means current directory.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the environment of the
	// current process.
	Env []string
}

// NewCommand is a shorthand for Command with name and arguments only.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithDir returns copy of the command with working directory set.
func (c Command) WithDir(dir string) Command {
	c.Dir = dir
	return c
}

// WithEnv returns copy of the command with extra environment entries.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string{}, c.Env...), env...)
	return c
}

// String renders the command for logs. Arguments with whitespace are quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, part := range append([]string{c.Name}, c.Args...) {
		if part == "" || strings.ContainsAny(part, " \t\n\"'") {
			part = strconv.Quote(part)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

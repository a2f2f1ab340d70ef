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
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func readAll(open func() (*os.File, error)) string {
	file, err := open()
	So(err, ShouldBeNil)
	defer file.Close()
	data, err := ioutil.ReadAll(file)
	So(err, ShouldBeNil)
	return string(data)
}

func TestLocal(t *testing.T) {
	Convey("While using Local executor", t, func() {
		outputDir, err := ioutil.TempDir("", "executor")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)

		l := NewLocal(outputDir)

		Convey("When blocking sleep command is executed", func() {
			handle, err := l.Execute(NewCommand("sleep", "300"))
			So(err, ShouldBeNil)
			defer handle.EraseOutput()
			defer handle.Clean()

			Convey("Task should be running and exit code unavailable", func() {
				So(handle.Status(), ShouldEqual, RUNNING)
				_, err := handle.ExitCode()
				So(err, ShouldNotBeNil)
				So(handle.Stop(), ShouldBeNil)
			})

			Convey("Wait with short timeout should not see termination", func() {
				So(handle.Wait(1*time.Millisecond), ShouldBeFalse)
				So(handle.Stop(), ShouldBeNil)
			})

			Convey("When we stop the task it should be terminated by SIGTERM", func() {
				So(handle.Stop(), ShouldBeNil)
				So(handle.Status(), ShouldEqual, TERMINATED)

				exitCode, err := handle.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, -15)

				Convey("Stopping again is a no-op", func() {
					So(handle.Stop(), ShouldBeNil)
				})
			})
		})

		Convey("Arguments are passed without shell interpretation", func() {
			handle, err := l.Execute(NewCommand("echo", "$HOME; rm -rf /", "a b"))
			So(err, ShouldBeNil)
			So(handle.Wait(0), ShouldBeTrue)

			So(readAll(handle.StdoutFile), ShouldEqual, "$HOME; rm -rf / a b\n")
			So(handle.Clean(), ShouldBeNil)
			So(handle.EraseOutput(), ShouldBeNil)
		})

		Convey("Working directory and environment are applied", func() {
			command := NewCommand("sh", "-c", "pwd; echo $BENCH_EXECUTOR_TEST; exit 3").
				WithDir(outputDir).
				WithEnv("BENCH_EXECUTOR_TEST=visible")

			handle, err := l.Execute(command)
			So(err, ShouldBeNil)
			So(handle.Wait(5*time.Second), ShouldBeTrue)

			exitCode, err := handle.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 3)

			lines := strings.Split(strings.TrimSpace(readAll(handle.StdoutFile)), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEndWith, filepath.Base(outputDir))
			So(lines[1], ShouldEqual, "visible")

			So(handle.Clean(), ShouldBeNil)
			So(handle.EraseOutput(), ShouldBeNil)
		})

		Convey("Starting missing binary fails and leaves no output behind", func() {
			_, err := l.Execute(NewCommand("/nonexistent/binary"))
			So(err, ShouldNotBeNil)

			entries, err := ioutil.ReadDir(outputDir)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("Run returns exit code and output", func() {
			result, err := Run(context.Background(), l, NewCommand("sh", "-c", "echo out; echo err >&2; exit 99"))
			So(err, ShouldBeNil)
			So(result.ExitCode, ShouldEqual, 99)
			So(result.Stdout, ShouldEqual, "out\n")
			So(result.Stderr, ShouldEqual, "err\n")
		})

		Convey("RunChecked reports non-zero exit code as error", func() {
			_, err := RunChecked(context.Background(), l, NewCommand("sh", "-c", "echo broken >&2; exit 1"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "broken")
		})

		Convey("Run stops the task when context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			start := time.Now()
			_, err := Run(ctx, l, NewCommand("sleep", "300"))
			So(err, ShouldNotBeNil)
			So(time.Since(start), ShouldBeLessThan, 5*time.Second)
		})
	})
}

func TestCommand(t *testing.T) {
	Convey("Command should render quoted arguments for logs", t, func() {
		command := NewCommand("docker", "compose", "-p", "ms_baseline", "run", "a b")
		So(command.String(), ShouldEqual, `docker compose -p ms_baseline run "a b"`)

		Convey("WithEnv does not share backing array", func() {
			base := command.WithEnv("A=1")
			first := base.WithEnv("B=2")
			second := base.WithEnv("C=3")
			So(first.Env, ShouldResemble, []string{"A=1", "B=2"})
			So(second.Env, ShouldResemble, []string{"A=1", "C=3"})
		})
	})
}

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

package stack

import (
	"context"
	"strings"
	"testing"

	"github.com/AndresRojas1512/marketstat-bench/pkg/executor"
	"github.com/AndresRojas1512/marketstat-bench/pkg/executor/mocks"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

// finishedTask returns handle of a task that already terminated with exitCode.
func finishedTask(exitCode int) *mocks.TaskHandle {
	handle := new(mocks.TaskHandle)
	handle.On("Wait", mock.Anything).Return(true)
	handle.On("ExitCode").Return(exitCode, nil)
	handle.On("StdoutFile").Return(nil, errors.New("no output"))
	handle.On("StderrFile").Return(nil, errors.New("no output"))
	handle.On("Clean").Return(nil)
	handle.On("EraseOutput").Return(nil)
	return handle
}

func hasArgs(args ...string) interface{} {
	return mock.MatchedBy(func(command executor.Command) bool {
		return strings.Contains(strings.Join(command.Args, " "), strings.Join(args, " "))
	})
}

type failingReclaimer struct{}

func (failingReclaimer) Reclaim(context.Context, ImplementationConfig) error {
	return errors.New("port 5055 is held by pid 42")
}

func TestCompose(t *testing.T) {
	Convey("While using compose controller", t, func() {
		ctx := context.Background()
		exec := new(mocks.Executor)
		config := ImplementationConfig{ID: "BASELINE", Port: 5055, Namespace: "ms_baseline"}
		composeConfig := ComposeConfig{File: "docker-compose.benchmark.yml", Dir: "/bench", Services: []string{"api", "db"}}

		Convey("Provision starts the project with implementation environment", func() {
			var started executor.Command
			exec.On("Execute", hasArgs("up", "-d", "api", "db")).
				Run(func(args mock.Arguments) { started = args.Get(0).(executor.Command) }).
				Return(finishedTask(0), nil).Once()

			controller := NewCompose(composeConfig, exec, nil)
			handle, err := controller.Provision(ctx, config)
			So(err, ShouldBeNil)
			So(handle.BaseURL, ShouldEqual, "http://localhost:5055")

			So(started.Name, ShouldEqual, "docker")
			So(started.Dir, ShouldEqual, "/bench")
			So(started.Args, ShouldResemble, []string{
				"compose", "-f", "docker-compose.benchmark.yml", "-p", "ms_baseline", "up", "-d", "api", "db",
			})
			So(started.Env, ShouldContain, "REPO_IMPLEMENTATION=BASELINE")
			So(started.Env, ShouldContain, "API_PORT=5055")

			Convey("Teardown removes the project once even if called twice", func() {
				exec.On("Execute", hasArgs("-p", "ms_baseline", "down", "-v")).Return(finishedTask(0), nil).Once()

				So(controller.Teardown(ctx, handle), ShouldBeNil)
				So(controller.Teardown(ctx, handle), ShouldBeNil)
				exec.AssertNumberOfCalls(t, "Execute", 2)
			})
		})

		Convey("Failing compose up returns StartupError with usable handle", func() {
			exec.On("Execute", hasArgs("up")).Return(finishedTask(1), nil)

			controller := NewCompose(composeConfig, exec, nil)
			handle, err := controller.Provision(ctx, config)
			So(err, ShouldNotBeNil)
			So(IsStartupError(err), ShouldBeTrue)
			So(handle, ShouldNotBeNil)

			exec.On("Execute", hasArgs("down")).Return(finishedTask(0), nil)
			So(controller.Teardown(ctx, handle), ShouldBeNil)
		})

		Convey("Failing reclamation prevents start", func() {
			controller := NewCompose(composeConfig, exec, failingReclaimer{})
			_, err := controller.Provision(ctx, config)
			So(IsStartupError(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "pid 42")
			exec.AssertNotCalled(t, "Execute", mock.Anything)
		})

		Convey("Teardown of nil handle is a no-op", func() {
			controller := NewCompose(composeConfig, exec, nil)
			So(controller.Teardown(ctx, nil), ShouldBeNil)
		})

		Convey("Teardown failure is reported", func() {
			exec.On("Execute", hasArgs("down")).Return(finishedTask(1), nil)
			controller := NewCompose(composeConfig, exec, nil)
			err := controller.Teardown(ctx, NewHandle(config, "localhost"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestComposeInfrastructure(t *testing.T) {
	Convey("Shared infrastructure runs as its own project", t, func() {
		exec := new(mocks.Executor)
		infra := NewComposeInfrastructure(ComposeConfig{File: "docker-compose.monitoring.yml"}, "ms_monitoring", exec)

		exec.On("Execute", hasArgs("-p", "ms_monitoring", "up", "-d")).Return(finishedTask(0), nil).Once()
		exec.On("Execute", hasArgs("-p", "ms_monitoring", "down", "-v")).Return(finishedTask(0), nil).Once()

		So(infra.Start(context.Background()), ShouldBeNil)
		So(infra.Stop(context.Background()), ShouldBeNil)
		exec.AssertExpectations(t)

		Convey("Start failure is reported", func() {
			failing := new(mocks.Executor)
			failing.On("Execute", mock.Anything).Return(nil, errors.New("docker: command not found"))
			infra := NewComposeInfrastructure(ComposeConfig{File: "docker-compose.monitoring.yml"}, "ms_monitoring", failing)
			So(infra.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

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
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// stopGracePeriod is how long Stop waits after SIGTERM before sending SIGKILL.
const stopGracePeriod = 10 * time.Second

// Local provides the execution environment on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	// OutputDir is the parent directory of per task output directories.
	// Empty means os.TempDir().
	OutputDir string
}

// NewLocal returns a Local instance writing task output under outputDir.
func NewLocal(outputDir string) Local {
	return Local{OutputDir: outputDir}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command Command) (TaskHandle, error) {
	stdoutFile, stderrFile, err := createExecutorOutputFiles(command, l.OutputDir)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(command.Name, command.Args...)
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	// Separate process group lets Stop signal the process with its children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	logrus.Debugf("%s: starting %s", l.Name(), command)
	if err := cmd.Start(); err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		removeOutputFiles(stdoutFile, stderrFile)
		return nil, errors.Wrapf(err, "cannot start %s", command)
	}
	logrus.Debugf("%s: started %q with pid %d", l.Name(), command.Name, cmd.Process.Pid)

	handle := &localTaskHandle{
		command:    command,
		pid:        cmd.Process.Pid,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		done:       make(chan struct{}),
	}

	go func() {
		// Error is not needed, the exit status is taken from ProcessState.
		cmd.Wait()
		handle.complete(exitCodeOf(cmd.ProcessState))
		logrus.Debugf("%s: %q (pid %d) ended with exit code %d, output in %q",
			l.Name(), command.Name, handle.pid, *handle.exitCode, stdoutFile.Name())
	}()

	return handle, nil
}

func exitCodeOf(state *os.ProcessState) int {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return state.ExitCode()
	}
	if status.Exited() {
		return status.ExitStatus()
	}
	// Show what signal caused the termination.
	return -int(status.Signal())
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	command    Command
	pid        int
	stdoutFile *os.File
	stderrFile *os.File

	mutex    sync.Mutex
	exitCode *int
	done     chan struct{}
}

func (h *localTaskHandle) complete(exitCode int) {
	h.mutex.Lock()
	h.exitCode = &exitCode
	h.mutex.Unlock()
	close(h.done)
}

func (h *localTaskHandle) isTerminated() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Stop sends SIGTERM to the whole process group and escalates to SIGKILL
// when the task does not terminate within the grace period.
func (h *localTaskHandle) Stop() error {
	if h.isTerminated() {
		return nil
	}

	// The kill syscall interprets a negated PID as the process group.
	logrus.Debugf("sending SIGTERM to process group %d (%q)", h.pid, h.command.Name)
	if err := syscall.Kill(-h.pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot send SIGTERM to %q", h.command.Name)
	}
	if h.Wait(stopGracePeriod) {
		return nil
	}

	logrus.Warnf("%q did not terminate after SIGTERM, sending SIGKILL", h.command.Name)
	if err := syscall.Kill(-h.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot send SIGKILL to %q", h.command.Name)
	}
	<-h.done
	return nil
}

// Status returns a state of the task.
func (h *localTaskHandle) Status() TaskState {
	if h.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns the exit code of terminated task.
func (h *localTaskHandle) ExitCode() (int, error) {
	if !h.isTerminated() {
		return -1, errors.Errorf("task %q is not terminated", h.command.Name)
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return *h.exitCode, nil
}

// StdoutFile returns a file handle for file to the task's stdout file.
func (h *localTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(h.stdoutFile)
}

// StderrFile returns a file handle for file to the task's stderr file.
func (h *localTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(h.stderrFile)
}

func openOutputFile(file *os.File) (*os.File, error) {
	if file == nil {
		return nil, errors.New("output file is not available")
	}
	return os.Open(file.Name())
}

// Wait blocks until the task terminates or timeout elapses.
func (h *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-h.done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return true
	case <-timer.C:
		return false
	}
}

// Clean closes the task's stdout & stderr files.
func (h *localTaskHandle) Clean() error {
	if err := h.stdoutFile.Close(); err != nil && !isAlreadyClosed(err) {
		return errors.Wrapf(err, "cannot close %q", h.stdoutFile.Name())
	}
	if err := h.stderrFile.Close(); err != nil && !isAlreadyClosed(err) {
		return errors.Wrapf(err, "cannot close %q", h.stderrFile.Name())
	}
	return nil
}

func isAlreadyClosed(err error) bool {
	return errors.Is(err, os.ErrClosed)
}

// EraseOutput removes task's stdout & stderr files.
func (h *localTaskHandle) EraseOutput() error {
	return removeOutputFiles(h.stdoutFile, h.stderrFile)
}

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Status is the terminal state of an executed command
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the child is killed
const waitDelay = 2 * time.Second

type Config struct {
	Command string
	Args    []string
	Dir     string        // working directory of the child; empty means inherit
	Timeout time.Duration // zero means no limit
}

type Result struct {
	Command       string
	Status        Status
	ExitCode      int
	ExecutionTime int64 // milliseconds
	Stdout        []byte
	Stderr        []byte
}

// FullCommand returns the command line as a single string
func FullCommand(config *Config) string {
	return strings.Join(append([]string{config.Command}, config.Args...), " ")
}

// Execute runs the command to completion and captures its output.
// A non-zero exit or timeout is reported through Result.Status; an error is
// returned only when the process could not be started.
func Execute(ctx context.Context, config *Config) (*Result, error) {
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	cmd.Dir = config.Dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	executionTime := time.Since(startTime).Milliseconds()

	result := &Result{
		Command:       FullCommand(config),
		Status:        StatusSuccess,
		ExecutionTime: executionTime,
		Stdout:        stdout.Bytes(),
		Stderr:        stderr.Bytes(),
	}

	if err == nil {
		return result, nil
	}

	// The child exited cleanly but a grandchild kept the output pipes open.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return result, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && config.Timeout > 0 {
		result.Status = StatusTimeout
		result.ExitCode = -1
		return result, nil
	}

	var exitError *exec.ExitError
	if !errors.As(err, &exitError) {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("command interrupted: %w", ctx.Err())
	}

	result.Status = StatusFailed
	if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
		result.ExitCode = status.ExitStatus()
	} else {
		result.ExitCode = 1
	}
	return result, nil
}

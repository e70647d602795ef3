package catalog

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/zinc-sig/scriptkit/internal/runner"
)

// DefaultTool is the scaffolding command used when none is configured
const DefaultTool = "new-script"

// Tool invokes the external new-script-from-template command
type Tool struct {
	Path string
}

// NewTool returns a Tool for the given executable, falling back to DefaultTool
func NewTool(path string) *Tool {
	if path == "" {
		path = DefaultTool
	}
	return &Tool{Path: path}
}

// ToolError reports a tool invocation that ran but did not succeed
type ToolError struct {
	Command  string
	Status   runner.Status
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Status == runner.StatusTimeout {
		msg = fmt.Sprintf("%s timed out", e.Command)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// List runs the tool without arguments and parses the template table
func (t *Tool) List(ctx context.Context) ([]Template, error) {
	stdout, err := t.run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return ParseTable(bytes.NewReader(stdout))
}

// Sample runs the tool with a template name and returns the generated source
func (t *Tool) Sample(ctx context.Context, name string) ([]byte, error) {
	stdout, err := t.run(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", name, err)
	}
	return stdout, nil
}

func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	config := &runner.Config{
		Command: t.Path,
		Args:    args,
	}

	result, err := runner.Execute(ctx, config)
	if err != nil {
		return nil, err
	}

	if result.Status != runner.StatusSuccess {
		return nil, &ToolError{
			Command:  result.Command,
			Status:   result.Status,
			ExitCode: result.ExitCode,
			Stderr:   strings.TrimSpace(string(result.Stderr)),
		}
	}

	return result.Stdout, nil
}

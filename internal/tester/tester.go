package tester

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zinc-sig/scriptkit/internal/console"
	"github.com/zinc-sig/scriptkit/internal/output"
	"github.com/zinc-sig/scriptkit/internal/runner"
	"github.com/zinc-sig/scriptkit/internal/upload"
)

// ErrScriptsDirMissing is returned when the scripts directory does not exist
var ErrScriptsDirMissing = errors.New("scripts directory does not exist")

type Options struct {
	Dir      string
	Timeout  time.Duration // per script; zero means no limit
	Reporter *console.Reporter
	Uploader upload.Provider // optional
}

// CheckDir verifies that dir exists and is a directory without touching its contents
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrScriptsDirMissing, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Run executes every regular file in Dir one after another and records a
// result artifact for each. Per-script failures are counted, not returned.
func Run(ctx context.Context, opts Options) (*output.Summary, error) {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = console.New(nil, nil, false)
	}

	if err := CheckDir(opts.Dir); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.Dir, err)
	}

	scripts, err := listScripts(dir, reporter)
	if err != nil {
		return nil, err
	}

	summary := &output.Summary{}
	for _, name := range scripts {
		result, err := runScript(ctx, dir, name, opts.Timeout, reporter)
		if err != nil {
			return summary, err
		}
		summary.Add(*result)

		if opts.Uploader != nil {
			uploadArtifact(ctx, opts.Uploader, dir, result.Artifact, reporter)
		}
	}

	return summary, nil
}

// listScripts returns the names of regular files in dir, skipping result artifacts
func listScripts(dir string, reporter *console.Reporter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var scripts []string
	for _, entry := range entries {
		name := entry.Name()
		if output.IsArtifact(name) {
			continue
		}

		// Stat follows symlinks so a link to a script is tested as that script.
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			reporter.Debugf("skipping %s: %v", name, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		scripts = append(scripts, name)
	}
	return scripts, nil
}

func runScript(ctx context.Context, dir, name string, timeout time.Duration, reporter *console.Reporter) (*output.ScriptResult, error) {
	config := &runner.Config{
		Command: filepath.Join(dir, name),
		Dir:     dir,
		Timeout: timeout,
	}

	if reporter.Verbose() {
		runner.PrintPreExecution(reporter.Err(), config)
	}

	res, err := runner.Execute(ctx, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// Could not start: record the reason as the script's stderr.
		res = &runner.Result{
			Command:  runner.FullCommand(config),
			Status:   runner.StatusFailed,
			ExitCode: -1,
			Stderr:   []byte(err.Error() + "\n"),
		}
	}

	if reporter.Verbose() {
		runner.PrintPostExecution(reporter.Err(), res)
	}

	result := &output.ScriptResult{
		Name:          name,
		Status:        string(res.Status),
		ExitCode:      res.ExitCode,
		ExecutionTime: res.ExecutionTime,
	}

	if res.Status == runner.StatusSuccess {
		result.Artifact = output.OutputArtifact(name)
		if err := writeArtifact(dir, result.Artifact, output.FailArtifact(name), res.Stdout); err != nil {
			return nil, err
		}
		reporter.Successf("%s", name)
		return result, nil
	}

	result.Artifact = output.FailArtifact(name)
	if err := writeArtifact(dir, result.Artifact, output.OutputArtifact(name), res.Stderr); err != nil {
		return nil, err
	}
	switch res.Status {
	case runner.StatusTimeout:
		reporter.Failf("%s (timed out after %s)", name, timeout)
	default:
		reporter.Failf("%s (exit %d)", name, res.ExitCode)
	}
	return result, nil
}

// writeArtifact writes the artifact and removes the opposite one left by an
// earlier run, so each script ends up with exactly one result file
func writeArtifact(dir, artifact, stale string, data []byte) error {
	path := filepath.Join(dir, artifact)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	stalePath := filepath.Join(dir, stale)
	if err := os.Remove(stalePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale %s: %w", stalePath, err)
	}
	return nil
}

func uploadArtifact(ctx context.Context, provider upload.Provider, dir, artifact string, reporter *console.Reporter) {
	path := filepath.Join(dir, artifact)
	reader, err := os.Open(path)
	if err != nil {
		reporter.Warnf("[UPLOAD] failed to open %s: %v", path, err)
		return
	}
	defer func() { _ = reader.Close() }()

	size := int64(-1)
	if info, err := reader.Stat(); err == nil {
		size = info.Size()
	}
	if err := provider.Upload(ctx, reader, size, artifact); err != nil {
		reporter.Warnf("[UPLOAD] %v", err)
		return
	}
	reporter.Debugf("[UPLOAD] %s uploaded via %s", artifact, provider.Name())
}

package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zinc-sig/scriptkit/internal/catalog"
	"github.com/zinc-sig/scriptkit/internal/console"
)

// scriptMode is applied after writing so the umask cannot strip the execute bit
const scriptMode fs.FileMode = 0755

// Source lists templates and produces sample scripts for them
type Source interface {
	List(ctx context.Context) ([]catalog.Template, error)
	Sample(ctx context.Context, name string) ([]byte, error)
}

type Options struct {
	Dir      string
	Source   Source
	Reporter *console.Reporter
}

// Report describes what a generate run did
type Report struct {
	Skipped   bool     // Dir already existed, nothing was done
	Generated []string // paths of written scripts
	Failed    []string // templates whose sample could not be produced
}

// Run creates Dir and fills it with one sample script per template.
// An existing Dir makes the run a no-op. Failure to produce one template's
// sample is reported and skipped; any other error aborts the run.
func Run(ctx context.Context, opts Options) (*Report, error) {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = console.New(nil, nil, false)
	}

	exists, err := dirExists(opts.Dir)
	if err != nil {
		return nil, err
	}
	if exists {
		reporter.Infof("%s already exists, skipping generation", opts.Dir)
		return &Report{Skipped: true}, nil
	}

	if err := os.Mkdir(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", opts.Dir, err)
	}
	reporter.Infof("Created %s", opts.Dir)

	templates, err := opts.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		reporter.Warnf("no templates found in tool listing")
	}

	report := &Report{}
	for _, tmpl := range templates {
		path, err := scriptPath(opts.Dir, tmpl)
		if err != nil {
			reporter.Failf("%v", err)
			report.Failed = append(report.Failed, tmpl.Name)
			continue
		}

		reporter.Debugf("generating %s (.%s)", tmpl.Name, tmpl.Extension)

		content, err := opts.Source.Sample(ctx, tmpl.Name)
		if err != nil {
			reporter.Failf("%v", err)
			report.Failed = append(report.Failed, tmpl.Name)
			continue
		}

		if err := writeScript(path, content); err != nil {
			return report, err
		}

		reporter.Successf("Generated %s", path)
		report.Generated = append(report.Generated, path)
	}

	return report, nil
}

// dirExists reports whether anything, even a dangling symlink, occupies path
func dirExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// scriptPath returns where tmpl's sample goes, refusing any name that would
// resolve outside dir
func scriptPath(dir string, tmpl catalog.Template) (string, error) {
	path := filepath.Join(dir, tmpl.FileName())
	if filepath.Dir(path) != filepath.Clean(dir) {
		return "", fmt.Errorf("template %q: file name %q escapes %s", tmpl.Name, tmpl.FileName(), dir)
	}
	return path, nil
}

func writeScript(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, scriptMode); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	return nil
}

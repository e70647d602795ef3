// Package console writes progress and diagnostic messages for scriptkit commands.
//
// Expected events go to the output writer, failures to the error writer.
// Color is only used when writing to a real terminal and NO_COLOR is unset.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Reporter prints progress to out and diagnostics to err
type Reporter struct {
	out     io.Writer
	err     io.Writer
	verbose bool

	good  *color.Color
	bad   *color.Color
	muted *color.Color
}

// New creates a Reporter. A nil writer discards its messages.
func New(out, err io.Writer, verbose bool) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if err == nil {
		err = io.Discard
	}

	r := &Reporter{
		out:     out,
		err:     err,
		verbose: verbose,
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed, color.Bold),
		muted:   color.New(color.FgHiBlack),
	}

	if !isTerminal(out) {
		r.good.DisableColor()
	}
	if !isTerminal(err) {
		r.bad.DisableColor()
		r.muted.DisableColor()
	}
	return r
}

// isTerminal reports whether w is a file attached to a TTY and NO_COLOR is unset
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Out returns the progress writer
func (r *Reporter) Out() io.Writer { return r.out }

// Err returns the diagnostic writer
func (r *Reporter) Err() io.Writer { return r.err }

// Verbose reports whether debug output is enabled
func (r *Reporter) Verbose() bool { return r.verbose }

// Infof prints an informational message
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Successf prints a progress line prefixed with a check mark
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.good.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Failf prints a per-item failure prefixed with a cross
func (r *Reporter) Failf(format string, args ...any) {
	fmt.Fprintf(r.err, "%s %s\n", r.bad.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Warnf prints a diagnostic that does not affect the outcome
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.err, format+"\n", args...)
}

// Debugf prints only in verbose mode
func (r *Reporter) Debugf(format string, args ...any) {
	if !r.verbose {
		return
	}
	fmt.Fprintln(r.err, r.muted.Sprintf(format, args...))
}

package runner

import (
	"fmt"
	"io"
)

// PrintPreExecution prints command details before execution
func PrintPreExecution(w io.Writer, config *Config) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Script Execution Details")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Command: %s\n", FullCommand(config))
	if config.Dir != "" {
		fmt.Fprintf(w, "Dir:     %s\n", config.Dir)
	}
	if config.Timeout > 0 {
		fmt.Fprintf(w, "Timeout: %s\n", config.Timeout)
	}
	fmt.Fprintln(w, "----------------------------------------")
}

// PrintPostExecution prints execution results after command completion
func PrintPostExecution(w io.Writer, result *Result) {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, "Execution Results:")
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Status:         %s\n", result.Status)
	fmt.Fprintf(w, "Exit Code:      %d\n", result.ExitCode)
	fmt.Fprintf(w, "Execution Time: %d ms\n", result.ExecutionTime)
	fmt.Fprintf(w, "Stdout:         %d bytes\n", len(result.Stdout))
	fmt.Fprintf(w, "Stderr:         %d bytes\n", len(result.Stderr))
	fmt.Fprintln(w, "========================================")
}

package output

import "strings"

const (
	outputSuffix = ".output.txt"
	failSuffix   = ".fail.txt"
)

// OutputArtifact returns the name of the file holding a passing script's stdout
func OutputArtifact(script string) string {
	return script + outputSuffix
}

// FailArtifact returns the name of the file holding a failing script's stderr
func FailArtifact(script string) string {
	return script + failSuffix
}

// IsArtifact reports whether name is a result artifact rather than a script
func IsArtifact(name string) bool {
	return strings.HasSuffix(name, outputSuffix) || strings.HasSuffix(name, failSuffix)
}

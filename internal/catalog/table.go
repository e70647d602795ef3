package catalog

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// rowPrefix marks a data row in the tool's listing
const rowPrefix = "| "

// Template describes one script skeleton offered by the tool
type Template struct {
	Name      string
	Extension string // without the leading dot
}

// FileName returns the name of the generated script, <name>.<extension>
func (t Template) FileName() string {
	return t.Name + "." + t.Extension
}

// ParseTable extracts templates from the tool's pipe-delimited listing.
//
// Rows look like "| go | Go | .go |": the second column is the template name
// and the third its extension. Separator rows and rows whose extension does
// not start with a dot (the header) are skipped, as are rows whose name or
// extension is not a plain file name component.
func ParseTable(r io.Reader) ([]Template, error) {
	var templates []Template

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tmpl, ok := parseRow(scanner.Text())
		if ok {
			templates = append(templates, tmpl)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read template listing: %w", err)
	}

	return templates, nil
}

func parseRow(line string) (Template, bool) {
	if !strings.HasPrefix(line, rowPrefix) {
		return Template{}, false
	}

	columns := splitColumns(line)
	if len(columns) <= 2 || isSeparator(columns) {
		return Template{}, false
	}

	name := columns[1]
	ext := columns[2]
	if !strings.HasPrefix(ext, ".") {
		return Template{}, false
	}
	ext = strings.TrimPrefix(ext, ".")
	if !isPlainName(name) || !isPlainName(ext) {
		return Template{}, false
	}

	return Template{Name: name, Extension: ext}, true
}

// splitColumns splits a row on '|' and trims each cell, dropping the empty
// cells outside the leading and trailing pipes
func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// isPlainName reports whether s can be used as a single path element:
// non-empty, not "." or "..", and free of path separators
func isPlainName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) {
		return false
	}
	return filepath.Base(s) == s
}

func isSeparator(columns []string) bool {
	for _, c := range columns {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

package lint

import "sort"

// Severity of a finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Violation is a single finding in a source file.
type Violation struct {
	// File is the path shown in reports, usually relative to the project.
	File string
	// Line and Column are 1-based. Column is 0 when unknown.
	Line     int
	Column   int
	Severity Severity
	Rule     string
	Message  string
}

// Sort orders violations by file, then position.
func Sort(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
)

// addressRegex matches `verb` or `verb:qualifier`.
var addressRegex = regexp.MustCompile(`^([a-z][a-z0-9_-]*)(?::([a-z][a-z0-9_-]*))?$`)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	matches := addressRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return Address{}, fmt.Errorf("invalid task identifier %q: expected 'verb' or 'verb:qualifier'", rawID)
	}
	return Address{Verb: matches[1], Qualifier: matches[2]}, nil
}

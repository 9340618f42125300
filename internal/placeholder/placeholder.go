// Package placeholder substitutes `{{key}}` tokens in templates.
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/specialistvlad/sitegridgo/internal/config"
)

// ErrUnknownPlaceholder is returned under the error policy when a template
// refers to a key that is not in the replacement table.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

// tokenRegex matches `{{key}}` where key is letters and dashes, in any case.
var tokenRegex = regexp.MustCompile(`(?i)\{\{([a-z\-]+)\}\}`)

// Replace substitutes every token in src with its value from table. Keys are
// looked up exactly as written. Tokens whose key is missing are handled
// according to policy.
func Replace(src string, table config.ReplaceTable, policy config.UnknownPlaceholderPolicy) (string, error) {
	if policy == config.PlaceholderError {
		if unknown := Unknown(src, table); len(unknown) > 0 {
			return "", fmt.Errorf("%w: %s", ErrUnknownPlaceholder, strings.Join(unknown, ", "))
		}
	}

	return tokenRegex.ReplaceAllStringFunc(src, func(token string) string {
		key := tokenRegex.FindStringSubmatch(token)[1]
		if v, ok := table[key]; ok {
			return v
		}
		if policy == config.PlaceholderKeep {
			return token
		}
		return ""
	}), nil
}

// Unknown returns the distinct keys used in src that table has no value for,
// sorted.
func Unknown(src string, table config.ReplaceTable) []string {
	seen := make(map[string]struct{})
	for _, m := range tokenRegex.FindAllStringSubmatch(src, -1) {
		if _, ok := table[m[1]]; !ok {
			seen[m[1]] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

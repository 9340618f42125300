package lint

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
)

// Stylish writes reports grouped by file: an underlined file name followed by
// one aligned line per finding, then a summary.
type Stylish struct {
	W     io.Writer
	Color bool
}

func (s *Stylish) paint(st color.Style, v string) string {
	if !s.Color {
		return v
	}
	return st.Render(v)
}

// Report writes vs and returns the number of errors and warnings. Nothing is
// written when vs is empty.
func (s *Stylish) Report(vs []Violation) (errs, warns int, err error) {
	if len(vs) == 0 {
		return 0, 0, nil
	}
	Sort(vs)

	var b strings.Builder
	file := ""
	for _, v := range vs {
		if v.File != file {
			if file != "" {
				b.WriteString("\n")
			}
			file = v.File
			b.WriteString(s.paint(color.New(color.OpUnderscore), file) + "\n")
		}

		sev := s.paint(color.New(color.FgYellow), "warning")
		if v.Severity == SeverityError {
			sev = s.paint(color.New(color.FgRed), "error  ")
			errs++
		} else {
			warns++
		}
		pos := fmt.Sprintf("line %d", v.Line)
		if v.Column > 0 {
			pos += fmt.Sprintf("  col %d", v.Column)
		}
		fmt.Fprintf(&b, "  %s  %-18s %s", sev, s.paint(color.New(color.FgDarkGray), pos), v.Message)
		if v.Rule != "" {
			b.WriteString("  " + s.paint(color.New(color.FgDarkGray), "("+v.Rule+")"))
		}
		b.WriteString("\n")
	}

	total := errs + warns
	summary := fmt.Sprintf("\n✖ %d %s (%d %s, %d %s)\n",
		total, plural(total, "problem"), errs, plural(errs, "error"), warns, plural(warns, "warning"))
	if errs > 0 {
		b.WriteString(s.paint(color.New(color.FgRed, color.OpBold), summary))
	} else {
		b.WriteString(s.paint(color.New(color.FgYellow, color.OpBold), summary))
	}

	_, err = io.WriteString(s.W, b.String())
	return errs, warns, err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

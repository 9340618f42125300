package lint

import (
	"github.com/evanw/esbuild/pkg/api"
)

// CheckScript parses a JavaScript source and reports syntax errors and
// suspicious constructs, such as comparisons with -0, duplicate object keys or
// assignments to constants.
func CheckScript(file string, src []byte) []Violation {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: file,
		LogLevel:   api.LogLevelSilent,
		Target:     api.ESNext,
	})

	var vs []Violation
	for _, m := range result.Errors {
		vs = append(vs, fromMessage(file, m, SeverityError))
	}
	for _, m := range result.Warnings {
		vs = append(vs, fromMessage(file, m, SeverityWarning))
	}
	Sort(vs)
	return vs
}

func fromMessage(file string, m api.Message, sev Severity) Violation {
	v := Violation{
		File:     file,
		Severity: sev,
		Rule:     m.ID,
		Message:  m.Text,
	}
	if v.Rule == "" {
		v.Rule = "syntax"
	}
	if m.Location != nil {
		v.Line = m.Location.Line
		v.Column = m.Location.Column + 1
	}
	return v
}

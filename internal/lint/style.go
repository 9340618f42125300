package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	hexColorRegex = regexp.MustCompile(`#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	zeroUnitRegex = regexp.MustCompile(`(^|[\s:(,])(0(?:px|em|rem|ex|ch|vh|vw|vmin|vmax|cm|mm|in|pt|pc))\b`)
	emptyRuleOne  = regexp.MustCompile(`\{\s*\}`)
)

// styleLine is one source line with comments stripped.
type styleLine struct {
	num  int
	raw  string
	code string
}

// CheckStyle runs every enabled rule of cfg over an SCSS source.
func CheckStyle(file string, src []byte, cfg *StyleConfig) []Violation {
	text := string(src)
	lines := splitStyleLines(text)

	var vs []Violation
	add := func(rc RuleConfig, rule string, line, col int, format string, args ...any) {
		vs = append(vs, Violation{
			File:     file,
			Line:     line,
			Column:   col,
			Severity: rc.Severity,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if rc, ok := cfg.rule("FinalNewline"); ok && len(text) > 0 && !strings.HasSuffix(text, "\n") {
		add(rc, "FinalNewline", len(lines), 0, "Files should end with a trailing newline")
	}

	prevOpen := 0
	for _, l := range lines {
		if rc, ok := cfg.rule("TrailingWhitespace"); ok {
			if trimmed := strings.TrimRightFunc(l.raw, unicode.IsSpace); len(trimmed) != len(l.raw) {
				add(rc, "TrailingWhitespace", l.num, len(trimmed)+1, "Line contains trailing whitespace")
			}
		}

		if rc, ok := cfg.rule("LineLength"); ok && rc.Max > 0 && len([]rune(l.raw)) > rc.Max {
			add(rc, "LineLength", l.num, rc.Max+1, "Line should be %d characters or less", rc.Max)
		}

		if rc, ok := cfg.rule("Indentation"); ok {
			checkIndentation(rc, l, add)
		}

		code := strings.TrimSpace(l.code)
		if code == "" {
			continue
		}

		if rc, ok := cfg.rule("EmptyRule"); ok {
			if loc := emptyRuleOne.FindStringIndex(l.code); loc != nil {
				add(rc, "EmptyRule", l.num, loc[0]+1, "Empty rule")
			} else if code == "}" && prevOpen > 0 {
				add(rc, "EmptyRule", prevOpen, 0, "Empty rule")
			}
		}
		prevOpen = 0
		if strings.HasSuffix(code, "{") {
			prevOpen = l.num
		}

		if rc, ok := cfg.rule("ImportantRule"); ok {
			if i := strings.Index(l.code, "!important"); i >= 0 {
				add(rc, "ImportantRule", l.num, i+1, "!important should not be used")
			}
		}

		value, offset := declarationValue(l.code)
		if value == "" {
			continue
		}

		if rc, ok := cfg.rule("ZeroUnit"); ok {
			for _, m := range zeroUnitRegex.FindAllStringSubmatchIndex(value, -1) {
				lit := value[m[4]:m[5]]
				add(rc, "ZeroUnit", l.num, offset+m[4]+1, "`%s` should be written without units as `0`", lit)
			}
		}

		for _, m := range hexColorRegex.FindAllStringSubmatchIndex(value, -1) {
			hex := value[m[2]:m[3]]
			col := offset + m[0] + 1
			if rc, ok := cfg.rule("HexNotation"); ok {
				want := strings.ToLower(hex)
				if rc.Style == "uppercase" {
					want = strings.ToUpper(hex)
				}
				if hex != want {
					add(rc, "HexNotation", l.num, col, "Color `#%s` should be written as `#%s`", hex, want)
				}
			}
			if rc, ok := cfg.rule("HexLength"); ok {
				checkHexLength(rc, l.num, col, hex, add)
			}
		}
	}

	Sort(vs)
	return vs
}

type addFunc func(rc RuleConfig, rule string, line, col int, format string, args ...any)

func checkIndentation(rc RuleConfig, l styleLine, add addFunc) {
	if strings.TrimSpace(l.raw) == "" {
		return
	}
	indent := l.raw[:len(l.raw)-len(strings.TrimLeft(l.raw, " \t"))]
	if strings.Contains(indent, "\t") {
		add(rc, "Indentation", l.num, 1, "Line should be indented with spaces, not tabs")
		return
	}
	width := rc.Width
	if width <= 0 {
		width = 2
	}
	if len(indent)%width != 0 {
		add(rc, "Indentation", l.num, 1, "Line should be indented a multiple of %d spaces, not %d", width, len(indent))
	}
}

func checkHexLength(rc RuleConfig, line, col int, hex string, add addFunc) {
	switch {
	case rc.Style == "long" && len(hex) == 3:
		long := string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		add(rc, "HexLength", line, col, "Color `#%s` should be written as `#%s`", hex, long)
	case rc.Style != "long" && len(hex) == 6 && hex[0] == hex[1] && hex[2] == hex[3] && hex[4] == hex[5]:
		short := string([]byte{hex[0], hex[2], hex[4]})
		add(rc, "HexLength", line, col, "Color `#%s` should be written as `#%s`", hex, short)
	}
}

// declarationValue returns the value part of a `property: value;` line and
// its byte offset, or "" when the line is not a declaration.
func declarationValue(code string) (string, int) {
	trimmed := strings.TrimSpace(code)
	if strings.HasSuffix(trimmed, "{") || strings.HasPrefix(trimmed, "@") {
		return "", 0
	}
	i := strings.Index(code, ":")
	if i < 0 {
		return "", 0
	}
	return code[i+1:], i + 1
}

// splitStyleLines splits src into lines and blanks out comments while
// keeping column positions intact.
func splitStyleLines(src string) []styleLine {
	raw := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	out := make([]styleLine, 0, len(raw))
	inBlock := false
	for i, r := range raw {
		r = strings.TrimSuffix(r, "\r")
		code := []byte(r)
		for j := 0; j < len(code); j++ {
			if inBlock {
				if code[j] == '*' && j+1 < len(code) && code[j+1] == '/' {
					code[j], code[j+1] = ' ', ' '
					j++
					inBlock = false
					continue
				}
				code[j] = ' '
				continue
			}
			if code[j] == '/' && j+1 < len(code) && code[j+1] == '*' {
				code[j], code[j+1] = ' ', ' '
				j++
				inBlock = true
				continue
			}
			if code[j] == '/' && j+1 < len(code) && code[j+1] == '/' && (j == 0 || code[j-1] == ' ' || code[j-1] == '\t') {
				for k := j; k < len(code); k++ {
					code[k] = ' '
				}
				break
			}
		}
		out = append(out, styleLine{num: i + 1, raw: r, code: string(code)})
	}
	return out
}

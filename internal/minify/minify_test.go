package minify

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
}

func TestScript(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := []byte(`/*! hoax v1.0 | MIT */
// helper comment
function addClass(element, className) {
  var current = element.className;
  element.className = current + ' ' + className;
}
window.addClass = addClass;
`)

	// --- Act ---
	res, err := Script(src, Options{Sourcefile: "hoax.js", MapURL: "hoax.min.js.map"})

	// --- Assert ---
	require.NoError(t, err)
	code := string(res.Code)
	assert.Contains(t, code, "/*! hoax v1.0 | MIT */", "legal comments are kept")
	assert.NotContains(t, code, "helper comment")
	assert.Less(t, len(code), len(src))
	assert.True(t, strings.HasSuffix(code, "//# sourceMappingURL=hoax.min.js.map\n"))

	var m sourceMap
	require.NoError(t, json.Unmarshal(res.Map, &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, []string{"hoax.js"}, m.Sources)
}

func TestScript_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Script([]byte("function ("), Options{Sourcefile: "bad.js"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to transform bad.js")
	assert.ErrorContains(t, err, "bad.js:1:")
}

func TestStylesheet(t *testing.T) {
	t.Parallel()

	res, err := Stylesheet([]byte(".a {\n  color: #ffffff;\n  margin: 0px;\n}\n"), Options{Sourcefile: "a.css", MapURL: "a.min.css.map"})

	require.NoError(t, err)
	code := string(res.Code)
	assert.Contains(t, code, ".a{color:#fff;margin:0}")
	assert.True(t, strings.HasSuffix(code, "/*# sourceMappingURL=a.min.css.map */\n"))
	assert.NotEmpty(t, res.Map)
}

func TestPrefix_AddsVendorPrefixes(t *testing.T) {
	t.Parallel()

	res, err := Prefix([]byte(".a{user-select:none}"), Options{Sourcefile: "a.css"})

	require.NoError(t, err)
	assert.Contains(t, string(res.Code), "-webkit-user-select:none")
	assert.Contains(t, string(res.Code), "user-select:none")
}

func TestStylesheet_ChainsInputMap(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A map that points the single generated line at main.scss.
	input := []byte(`{"version":3,"sources":["main.scss"],"sourcesContent":[".a {\n  color: red;\n}\n"],"names":[],"mappings":"AAAA"}`)

	// --- Act ---
	res, err := Stylesheet([]byte(".a{color:red}"), Options{Sourcefile: "main.css", InputMap: input})

	// --- Assert ---
	require.NoError(t, err)
	var m sourceMap
	require.NoError(t, json.Unmarshal(res.Map, &m))
	require.Len(t, m.Sources, 1)
	assert.True(t, strings.HasSuffix(m.Sources[0], "main.scss"), "sources: %v", m.Sources)
}

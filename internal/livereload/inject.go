package livereload

import (
	"bytes"
	_ "embed"
	"net/http"
)

// ScriptPath is where the live-reload client script is served.
const ScriptPath = "/sitegrid/livereload.js"

//go:embed assets/livereload.js
var clientScript []byte

// snippet loads the socket.io client shipped by the server, then ours.
var snippet = []byte(`<script src="/socket.io/socket.io.min.js"></script><script src="` + ScriptPath + `"></script>`)

var closingBody = []byte("</body>")

// Inject inserts the live-reload scripts before the last `</body>` tag. A
// document without one gets the scripts appended.
func Inject(html []byte) []byte {
	i := lastIndexFold(html, closingBody)
	if i < 0 {
		out := make([]byte, 0, len(html)+len(snippet))
		return append(append(out, html...), snippet...)
	}
	out := make([]byte, 0, len(html)+len(snippet))
	out = append(out, html[:i]...)
	out = append(out, snippet...)
	return append(out, html[i:]...)
}

// lastIndexFold is bytes.LastIndex ignoring case. The offset refers to s
// itself, whatever its encoding.
func lastIndexFold(s, sep []byte) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if bytes.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}

// ScriptHandler serves the live-reload client script.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(clientScript)
	})
}

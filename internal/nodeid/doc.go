// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for task
identifiers, based on the canonical format `verb[:qualifier]`.

Examples are `build`, `build:styles`, `watch:html` and `default`. The
qualifier usually names an asset category.

This package enforces the identifier schema and centralizes all
formatting and parsing logic.
*/
package nodeid

// Package watch rebuilds asset categories when their sources change.
//
// A Supervisor starts Idle. The first registered category moves it to
// Watching, which lasts until Close. Each category has its own rebuild loop:
// rebuilds of one category never overlap, and changes that arrive while a
// rebuild is running collapse into a single follow-up rebuild.
package watch

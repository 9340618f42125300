// Package app contains the core application logic. It wires the task file,
// the task modules and the long-running collaborators (dev server, live
// reload, file watchers) into one App, decoupled from the CLI entrypoint.
package app

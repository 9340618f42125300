// Package testutil holds shared helpers for tests: project tree writers,
// task runners and fakes for the collaborators tasks talk to.
package testutil

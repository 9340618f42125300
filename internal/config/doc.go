// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from a task
// file.
//
// The `config.Model` is the single source of truth for the build modules,
// the watcher and the dev server. Concrete loaders, such as for HCL or TOML,
// are provided in separate packages and translate their syntax into an
// Overlay that is applied on top of Default().
package config

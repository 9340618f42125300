// Package registry provides the central "glue" for the task system.
//
// The Registry stores the mapping between task identifiers used on the command
// line and in task files (e.g., "build:styles") and the compiled Go functions
// that implement them, together with each task's declared prerequisites.
//
// During application startup every module registers its tasks, alias tasks
// from the task file are added, and the registry is validated so that every
// prerequisite names a known task before anything runs.
package registry

// Package integration_tests runs whole sites through the application, from
// task file to build output, dev server and watchers.
package integration_tests

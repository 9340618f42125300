// Package lint checks script and stylesheet sources and formats the findings
// as a human readable report. Findings never fail a build.
package lint

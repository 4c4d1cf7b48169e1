// Package preflight checks that the filesystem paths a pipeline run depends
// on are usable before any stage starts.
//
// The run command calls RunAll and stops when a check fails, so a bad path
// is reported up front instead of after a long indexing pass. Each check
// returns a Result rather than an error so the CLI can render all of them.
package preflight

// Package version exposes build metadata for thinkscript-sync.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Full renders them for the `version` command, UserAgent for
// outgoing HTTP requests.
package version

// Package settings reads the flat key=value files that describe where the
// trading application keeps its cache and which scripts to synchronize.
package settings

// Package synchronizer runs one synchronization of remote scripts into the
// trading application cache.
//
// Run loads the tool options and both settings files, resolves the cache
// file, downloads every script, validates the cache structure, rewrites the
// Base64 bodies that changed and writes the cache back once when anything
// changed. Errors are returned to the caller, which decides the exit status.
package synchronizer

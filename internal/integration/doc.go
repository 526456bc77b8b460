// Package integration holds end-to-end tests running a full synchronization
// against an HTTP script server and on-disk settings and cache files.
package integration

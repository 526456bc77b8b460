// Package cache finds and edits the trading application's XML cache file.
//
// Locate picks the cache file (explicit name or the largest matching file in
// the installation directory). Document wraps the parsed XML tree: Validate
// checks the chart entities container, SetCode rewrites the Base64 body of a
// named script entity, and Save atomically replaces the file on disk.
// ApplyScripts runs the per-script comparison over a whole download batch.
package cache

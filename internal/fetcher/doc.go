// Package fetcher downloads script sources over HTTP(S) into a local folder,
// naming each file after the last path segment of its URL.
package fetcher

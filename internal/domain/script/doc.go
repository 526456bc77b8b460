// Package script contains the domain types for synchronized scripts.
//
// It defines Download (a script fetched to disk), the ordered Downloads
// record passed from the fetcher to the cache updater, and the Base64 text
// encoding the trading application uses for script bodies.
package script

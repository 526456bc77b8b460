// Package process inspects the process table to tell whether the trading
// application is running while its cache is being edited.
package process

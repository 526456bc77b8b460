// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and an optional rotating log file sink,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Every component accepts a context and extracts the logger from it, so the
// run id and component name follow each line.
package logger

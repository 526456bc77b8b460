package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// logFileMaxSizeMB is the size at which the log file is rotated.
	logFileMaxSizeMB = 10
	// logFileMaxBackups is how many rotated files are kept.
	logFileMaxBackups = 3
	// logDirPermissions is used when the log directory does not exist yet.
	logDirPermissions = 0o755
)

// NewFileWriter returns a rotating writer for the provided log file path.
// An empty path yields a nil writer, which New ignores.
func NewFileWriter(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, nil //nolint:nilnil // No file sink requested.
	}

	if err := os.MkdirAll(filepath.Dir(path), logDirPermissions); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		LocalTime:  true,
	}, nil
}

// TeeWriter returns an option duplicating every entry of a logger into w.
// Fields already attached with With stay on the original output only, so
// apply it before naming the logger or adding fields.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func TeeWriter(w io.Writer, level zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, zapcore.NewCore(newEncoder(), zapcore.AddSync(w), level))
	})
}

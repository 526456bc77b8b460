package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/thinkscript-sync/internal/logger"
)

const (
	// MarkerFilename marks that a synchronization is running right now to avoid parallel execution.
	MarkerFilename = ".thinkscript-sync.marker"

	// markerLifetime is the period after which a stale marker is ignored.
	markerLifetime = time.Minute

	// markerDirPermissions is used when the marker directory does not exist yet.
	markerDirPermissions = 0o755

	// markerFilePermissions is used for the marker itself.
	markerFilePermissions = 0o600
)

// ErrSyncAlreadyRunning is returned when another run holds the marker.
var ErrSyncAlreadyRunning = errors.New("synchronization is already running")

// acquireMarker creates the run marker in dir and returns a function removing it.
// A marker older than markerLifetime is left over from a crashed run and is replaced.
func acquireMarker(ctx context.Context, dir string) (func(), error) {
	if err := os.MkdirAll(dir, markerDirPermissions); err != nil {
		return nil, fmt.Errorf("create marker directory: %w", err)
	}

	path := filepath.Join(dir, MarkerFilename)

	fileInfo, err := os.Stat(path)
	switch {
	case err == nil:
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return nil, fmt.Errorf("%s: %w", path, ErrSyncAlreadyRunning)
		}

		logger.Warn(ctx, "The run marker is too old, removing it")

		if err = os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale marker: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read run marker: %w", err)
	}

	marker, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, markerFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrSyncAlreadyRunning)
		}

		return nil, fmt.Errorf("create run marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "Unable to remove run marker: %v", err)
		}
	}, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/oshokin/thinkscript-sync/internal/logger"
	"github.com/oshokin/thinkscript-sync/internal/settings"
)

// ErrNoCacheFiles is returned when discovery finds no candidate cache file.
var ErrNoCacheFiles = errors.New("no cache files found")

// Candidate is a cache file found during discovery.
type Candidate struct {
	Path string
	Size int64
}

// Locate resolves the cache file to operate on. An explicit file name is
// returned as is; otherwise the largest matching file in the installation directory wins.
func Locate(ctx context.Context, app *settings.Application) (string, error) {
	if app.CacheFileName != "" {
		return app.CacheFileName, nil
	}

	candidates, err := FindCandidates(app.InstallationDirectory, app.CacheFileNameRegex)
	if err != nil {
		return "", err
	}

	logger.Infof(ctx, "No %s specified. Found %d cache files in directory", settings.KeyCacheFileName, len(candidates))

	if len(candidates) == 0 {
		logger.Errorf(ctx, "No cache files found. Are you sure your %s is setup correctly?", settings.KeyInstallationDirectory)

		return "", fmt.Errorf("%s: %w", app.InstallationDirectory, ErrNoCacheFiles)
	}

	for _, candidate := range candidates {
		logger.InfoKV(ctx, fmt.Sprintf("Found %s cache file", candidate.Path), "size", candidate.Size)
	}

	return candidates[0].Path, nil
}

// FindCandidates lists regular files in dir whose names match pattern at their start,
// largest first. Equal sizes are ordered by path.
func FindCandidates(dir, pattern string) ([]Candidate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile cache file name pattern: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list installation directory: %w", err)
	}

	candidates := make([]Candidate, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !matchesFromStart(re, entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}

		candidates = append(candidates, Candidate{
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Size != candidates[j].Size {
			return candidates[i].Size > candidates[j].Size
		}

		return candidates[i].Path < candidates[j].Path
	})

	return candidates, nil
}

// matchesFromStart reports whether re matches a prefix of name.
func matchesFromStart(re *regexp.Regexp, name string) bool {
	loc := re.FindStringIndex(name)

	return loc != nil && loc[0] == 0
}

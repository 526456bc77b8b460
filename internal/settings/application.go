package settings

import "fmt"

// Application settings keys.
const (
	KeyCacheFileName         = "ThinkOrSwimCacheFileName"
	KeyInstallationDirectory = "ThinkOrSwimInstallationDirectory"
	KeyCacheFileNameRegex    = "ThinkOrSwimCacheFileNameRegex"
)

// Application is the typed view of the application settings file.
type Application struct {
	// CacheFileName is an explicit cache file path. When set, discovery is skipped.
	CacheFileName string
	// InstallationDirectory is scanned for cache files when CacheFileName is empty.
	InstallationDirectory string
	// CacheFileNameRegex selects cache file candidates inside InstallationDirectory.
	CacheFileNameRegex string
}

// NewApplication extracts the application settings. The directory and pattern
// are only required when no explicit cache file name is configured.
func NewApplication(s *Settings) (*Application, error) {
	app := &Application{
		CacheFileName:         s.Value(KeyCacheFileName),
		InstallationDirectory: s.Value(KeyInstallationDirectory),
		CacheFileNameRegex:    s.Value(KeyCacheFileNameRegex),
	}

	if app.CacheFileName != "" {
		return app, nil
	}

	if _, err := s.Require(KeyInstallationDirectory); err != nil {
		return nil, fmt.Errorf("no %s configured: %w", KeyCacheFileName, err)
	}

	if _, err := s.Require(KeyCacheFileNameRegex); err != nil {
		return nil, fmt.Errorf("no %s configured: %w", KeyCacheFileName, err)
	}

	return app, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and rejected values.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, Default(), cfg)

	cfg = &Config{Timeout: -time.Second}
	require.ErrorIs(t, Validate(cfg), errNegativeTimeout)

	cfg = &Config{LogLevel: "chatty"}
	require.ErrorIs(t, Validate(cfg), errUnknownLogLevel)
}

// TestSaveLoadRoundtrip ensures options are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "options.yaml")

	cfg := &Config{
		SettingsFile: "tos.ini",
		ScriptsFile:  "studies.ini",
		DownloadDir:  "out",
		Timeout:      15 * time.Second,
		LogLevel:     "debug",
		ProcessName:  "thinkorswim.exe",
		DryRun:       true,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadPartialFileKeepsDefaults verifies omitted keys fall back to defaults.
func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download_dir: scripts\n"), DefaultFilePermissions))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "scripts", loaded.DownloadDir)
	require.Equal(t, DefaultSettingsFilename, loaded.SettingsFile)
	require.Equal(t, DefaultScriptsFilename, loaded.ScriptsFile)
}

// TestLoadMissingExplicitFile fails when a named options file does not exist.
func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

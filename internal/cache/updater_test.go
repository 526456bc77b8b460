package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/thinkscript-sync/internal/domain/script"
)

func writeScript(t *testing.T, name, contents string) script.Download {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".ts")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return script.Download{Name: name, Path: path}
}

// TestApplyScriptsUnchanged leaves the document alone when the encoding matches.
func TestApplyScriptsUnchanged(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)

	ctx, logs := observedContext()

	result, err := ApplyScripts(ctx, doc, script.Downloads{writeScript(t, "Trend", "old")})
	require.NoError(t, err)
	require.False(t, result.Changed())
	require.Equal(t, []string{"Trend"}, result.Unchanged)
	require.Empty(t, result.Missing)
	require.Equal(t, 1, logs.FilterMessage("No changes to script Trend").Len())
}

// TestApplyScriptsUpdates rewrites differing entities and normalizes line endings first.
func TestApplyScriptsUpdates(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)

	ctx, logs := observedContext()

	downloads := script.Downloads{
		writeScript(t, "Breakout", "def x = 1;\r\nplot P = x;\r\n"),
		writeScript(t, "Trend", "old"),
	}

	result, err := ApplyScripts(ctx, doc, downloads)
	require.NoError(t, err)
	require.True(t, result.Changed())
	require.Equal(t, []string{"Breakout"}, result.Updated)
	require.Equal(t, []string{"Trend"}, result.Unchanged)

	code, err := doc.Code("Breakout")
	require.NoError(t, err)
	require.Equal(t, script.Encode("def x = 1;\nplot P = x;\n"), code)
	require.Equal(t, 1, logs.FilterMessage("Updated contents of script Breakout").Len())
}

// TestApplyScriptsStopsOnMissing keeps earlier updates and skips the rest.
func TestApplyScriptsStopsOnMissing(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)

	ctx, logs := observedContext()

	downloads := script.Downloads{
		writeScript(t, "Trend", "new body"),
		writeScript(t, "Ghost", "nobody home"),
		writeScript(t, "Breakout", "never applied"),
	}

	result, err := ApplyScripts(ctx, doc, downloads)
	require.NoError(t, err)
	require.Equal(t, []string{"Trend"}, result.Updated)
	require.Equal(t, "Ghost", result.Missing)
	require.True(t, result.Changed())
	require.Equal(t, 1, logs.FilterMessage("Failed to find script with name Ghost").Len())

	code, err := doc.Code("Breakout")
	require.NoError(t, err)
	require.Empty(t, code)
}

// TestApplyScriptsReadFailure is fatal.
func TestApplyScriptsReadFailure(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)

	ctx, _ := observedContext()

	downloads := script.Downloads{{Name: "Trend", Path: filepath.Join(t.TempDir(), "gone.ts")}}

	_, err = ApplyScripts(ctx, doc, downloads)
	require.ErrorIs(t, err, os.ErrNotExist)
}

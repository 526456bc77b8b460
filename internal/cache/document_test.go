package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/thinkscript-sync/internal/domain/script"
)

const validCache = `<?xml version="1.0" encoding="UTF-8"?>
<root version="3">
  <PROPERTIES_CACHE>
    <CHART_ENTITIES_CACHE>
      <ENTITIES>
        <STUDY NAME="Trend" CODE="b2xk" TYPE="study" DESC="line1&#10;line2&#9;tab&#13;"/>
        <STRATEGY NAME="Breakout" CODE="" TYPE="strategy"/>
      </ENTITIES>
    </CHART_ENTITIES_CACHE>
  </PROPERTIES_CACHE>
  <OTHER NAME="Trend" CODE="c2hhZG93"/>
</root>
`

func writeCache(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.xml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o640))

	return path
}

// TestDocumentValidate accepts the expected structure and rejects missing containers.
func TestDocumentValidate(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	for _, contents := range []string{
		`<root/>`,
		`<root><PROPERTIES_CACHE/></root>`,
		`<root><PROPERTIES_CACHE><CHART_ENTITIES_CACHE/></PROPERTIES_CACHE></root>`,
		`<root><CHART_ENTITIES_CACHE><ENTITIES/></CHART_ENTITIES_CACHE></root>`,
	} {
		doc, err = Open(writeCache(t, contents))
		require.NoError(t, err)
		require.ErrorIs(t, doc.Validate(), ErrInvalidCache, contents)
	}
}

// TestOpenFailures surfaces missing and unparsable files.
func TestOpenFailures(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.xml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(writeCache(t, "<root><unclosed></root>"))
	require.Error(t, err)
}

// TestDocumentCodeFindsFirstInDocumentOrder looks entities up by NAME regardless of tag.
func TestDocumentCodeFindsFirstInDocumentOrder(t *testing.T) {
	t.Parallel()

	doc, err := Open(writeCache(t, validCache))
	require.NoError(t, err)

	code, err := doc.Code("Trend")
	require.NoError(t, err)
	require.Equal(t, "b2xk", code)

	code, err = doc.Code("Breakout")
	require.NoError(t, err)
	require.Empty(t, code)

	_, err = doc.Code("Unknown")
	require.ErrorIs(t, err, ErrScriptNotFound)
}

// TestDocumentSetCodeAndSave changes one attribute and persists it keeping the rest intact.
func TestDocumentSetCodeAndSave(t *testing.T) {
	t.Parallel()

	path := writeCache(t, validCache)

	doc, err := Open(path)
	require.NoError(t, err)

	changed, err := doc.SetCode("Trend", "b2xk")
	require.NoError(t, err)
	require.False(t, changed)

	encoded := script.Encode("plot Trend = close;")
	changed, err = doc.SetCode("Trend", encoded)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = doc.SetCode("Unknown", encoded)
	require.ErrorIs(t, err, ErrScriptNotFound)

	require.NoError(t, doc.Save())

	// Whitespace inside untouched attributes stays escaped in the written bytes.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `DESC="line1&#xA;line2&#x9;tab&#xD;"`)
	require.NotContains(t, string(raw), "line1\n")
	require.NotContains(t, string(raw), "line2\t")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(filepath.Dir(path), ".cache.xml.old"))
	require.ErrorIs(t, err, os.ErrNotExist)

	reloaded, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Validate())

	code, err := reloaded.Code("Trend")
	require.NoError(t, err)
	require.Equal(t, encoded, code)

	root := reloaded.doc.Root()
	require.Equal(t, "3", root.SelectAttrValue("version", ""))
	require.Equal(t, "c2hhZG93", root.SelectElement("OTHER").SelectAttrValue(codeAttribute, ""))
	require.Equal(t, "study", root.FindElement(".//STUDY").SelectAttrValue("TYPE", ""))
	require.Equal(t, "line1\nline2\ttab\r", root.FindElement(".//STUDY").SelectAttrValue("DESC", ""))
}

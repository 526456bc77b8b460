package script

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Download is a script fetched to the local disk.
type Download struct {
	// Name is the script name, also the NAME attribute of its cache entity.
	Name string
	// URL is where the script was fetched from.
	URL string
	// Path is the local file holding the script source.
	Path string
}

// Downloads is the ordered result of a fetch run, in script settings order.
type Downloads []Download

// Names returns the script names in order.
func (d Downloads) Names() []string {
	names := make([]string, 0, len(d))
	for _, item := range d {
		names = append(names, item.Name)
	}

	return names
}

// Read returns the script source as text with line endings normalized to \n.
func (d *Download) Read() (string, error) {
	contents, err := os.ReadFile(filepath.Clean(d.Path))
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", d.Name, err)
	}

	return NormalizeNewlines(string(contents)), nil
}

// NormalizeNewlines converts \r\n and lone \r to \n.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return strings.ReplaceAll(text, "\r", "\n")
}

// Encode returns the Base64 form of the UTF-8 script text stored in the cache CODE attribute.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode.
func Decode(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode script code: %w", err)
	}

	return string(decoded), nil
}

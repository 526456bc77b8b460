package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// delimiter separates keys from values.
	delimiter = "="
	// commentPrefix marks a line that is ignored.
	commentPrefix = "#"
)

// lineBreaks turns \r\n and lone \r line endings into \n.
//
//nolint:gochecknoglobals // Replacers are safe for concurrent use.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var (
	// ErrMalformedConfigLine is returned for a line that has zero or more than one delimiter.
	ErrMalformedConfigLine = errors.New("malformed config line")
	// ErrMissingKey is returned when a required key is absent or empty.
	ErrMissingKey = errors.New("missing settings key")
)

// Settings is a flat key-value mapping that remembers the order keys first appeared in.
// The zero value is an empty mapping ready to use.
type Settings struct {
	keys   []string
	values map[string]string
}

// Load parses the key=value file at path.
func Load(path string) (*Settings, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s, err := Parse(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	return s, nil
}

// Parse reads key=value lines. Blank lines and lines starting with # are skipped,
// keys and values are trimmed. A repeated key keeps its first position and takes the last value.
func Parse(r io.Reader) (*Settings, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s := new(Settings)
	lines := strings.Split(lineBreaks.Replace(string(contents)), "\n")

	for i, rawLine := range lines {
		lineNumber := i + 1

		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		parts := strings.Split(line, delimiter)
		if len(parts) != 2 { //nolint:mnd // Exactly a key and a value.
			return nil, fmt.Errorf("line %d %q: %w", lineNumber, line, ErrMalformedConfigLine)
		}

		s.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}

	return s, nil
}

// Set stores the value, appending the key if it is new.
func (s *Settings) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}

	if _, found := s.values[key]; !found {
		s.keys = append(s.keys, key)
	}

	s.values[key] = value
}

// Get returns the value of key and whether it is present.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}

	value, found := s.values[key]

	return value, found
}

// Value returns the value of key or an empty string.
func (s *Settings) Value(key string) string {
	value, _ := s.Get(key)
	return value
}

// Require returns the value of key or ErrMissingKey if it is absent or empty.
func (s *Settings) Require(key string) (string, error) {
	value := s.Value(key)
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrMissingKey)
	}

	return value, nil
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}

	return append([]string(nil), s.keys...)
}

// Len returns the number of keys.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}

	return len(s.keys)
}

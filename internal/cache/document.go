package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	goupdate "github.com/doitdistributed/go-update"
)

const (
	// entitiesPath is the container of chart entities relative to the root element.
	entitiesPath = "./PROPERTIES_CACHE/CHART_ENTITIES_CACHE/ENTITIES"

	// nameAttribute identifies a script entity.
	nameAttribute = "NAME"
	// codeAttribute holds the Base64 encoded script body.
	codeAttribute = "CODE"
)

var (
	// ErrInvalidCache is returned when the document lacks the chart entities container.
	ErrInvalidCache = errors.New("cache file does not look valid")
	// ErrScriptNotFound is returned when no entity carries the requested NAME.
	ErrScriptNotFound = errors.New("script not found in cache")
)

// Document is a parsed cache file. It is mutated in place and written back at most once per run.
type Document struct {
	path string
	mode os.FileMode
	doc  *etree.Document
}

// Open parses the cache file at path.
func Open(path string) (*Document, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	doc := etree.NewDocument()
	// Tabs and line breaks inside attribute values must stay character references,
	// otherwise XML readers normalize them to spaces.
	doc.WriteSettings.CanonicalAttrVal = true
	if err = doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse cache file %s: %w", path, err)
	}

	return &Document{
		path: path,
		mode: info.Mode().Perm(),
		doc:  doc,
	}, nil
}

// Path returns the cache file path.
func (d *Document) Path() string {
	return d.path
}

// Validate checks that the chart entities container is present.
func (d *Document) Validate() error {
	root := d.doc.Root()
	if root == nil || root.FindElement(entitiesPath) == nil {
		return fmt.Errorf("%s: %w", d.path, ErrInvalidCache)
	}

	return nil
}

// Code returns the encoded body of the named script.
func (d *Document) Code(name string) (string, error) {
	entity := d.findEntity(name)
	if entity == nil {
		return "", fmt.Errorf("%s: %w", name, ErrScriptNotFound)
	}

	return entity.SelectAttrValue(codeAttribute, ""), nil
}

// SetCode stores the encoded body of the named script and reports whether it changed.
func (d *Document) SetCode(name, encoded string) (bool, error) {
	entity := d.findEntity(name)
	if entity == nil {
		return false, fmt.Errorf("%s: %w", name, ErrScriptNotFound)
	}

	if entity.SelectAttrValue(codeAttribute, "") == encoded {
		return false, nil
	}

	entity.CreateAttr(codeAttribute, encoded)

	return true, nil
}

// Save replaces the cache file with the serialized document atomically.
// The new contents go to a temporary file that is renamed over the cache,
// so a failed write leaves the previous file in place.
func (d *Document) Save() error {
	data, err := d.doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize cache: %w", err)
	}

	options := goupdate.Options{
		TargetPath: d.path,
		TargetMode: d.mode,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// findEntity returns the first descendant of the root, in document order,
// whose NAME attribute equals name.
func (d *Document) findEntity(name string) *etree.Element {
	root := d.doc.Root()
	if root == nil {
		return nil
	}

	stack := reverse(root.ChildElements())
	for len(stack) > 0 {
		element := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if attr := element.SelectAttr(nameAttribute); attr != nil && attr.Value == name {
			return element
		}

		stack = append(stack, reverse(element.ChildElements())...)
	}

	return nil
}

func reverse(elements []*etree.Element) []*etree.Element {
	for i, j := 0, len(elements)-1; i < j; i, j = i+1, j-1 {
		elements[i], elements[j] = elements[j], elements[i]
	}

	return elements
}

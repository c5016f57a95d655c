package schema

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// EmbeddedKey is the preamble key a document uses to name its own schema.
const EmbeddedKey = "$schema"

// Origin says where a schema path came from.
type Origin int

// Origins in priority order, highest first.
const (
	OriginNone Origin = iota
	OriginExplicit
	OriginEmbedded
	OriginProject
)

func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit"
	case OriginEmbedded:
		return "embedded"
	case OriginProject:
		return "project"
	default:
		return "none"
	}
}

// Source is the schema chosen for one document.
type Source struct {
	Path   string
	Origin Origin
}

// Resolver picks a schema path for a document: an explicit path beats the
// document's [EmbeddedKey], which beats the project config entry.
type Resolver struct {
	// Explicit is the path given for this invocation, if any.
	Explicit string
	// Project is the schema path from the project configuration, if any.
	Project string
}

// Resolve returns the schema for the document at docPath with the given
// preamble. An embedded path is relative to the document's directory. The
// zero Source means no schema applies.
func (r Resolver) Resolve(docPath string, preamble node.Mapping) Source {
	if r.Explicit != "" {
		return Source{Path: r.Explicit, Origin: OriginExplicit}
	}

	if v, ok := preamble.Get(node.Scalar(EmbeddedKey)); ok {
		if text, ok := v.AsScalar(); ok && text != "" {
			if !filepath.IsAbs(text) {
				text = filepath.Join(filepath.Dir(docPath), text)
			}

			return Source{Path: text, Origin: OriginEmbedded}
		}
	}

	if r.Project != "" {
		return Source{Path: r.Project, Origin: OriginProject}
	}

	return Source{}
}

// FileReader reads schema files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Cache loads and parses each schema path at most once. Failures are cached
// too. Safe for concurrent use.
type Cache struct {
	files FileReader

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	schema *Schema
	err    error
}

// NewCache returns a Cache reading through files.
func NewCache(files FileReader) *Cache {
	return &Cache{files: files, entries: map[string]cacheEntry{}}
}

// Load returns the parsed schema at path.
func (c *Cache) Load(path string) (*Schema, error) {
	key := filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.schema, e.err
	}

	var e cacheEntry

	data, err := c.files.ReadFile(key)
	if err != nil {
		e.err = fmt.Errorf("%w: %s: %w", ErrSchemaRead, path, err)
	} else if e.schema, err = Parse(data); err != nil {
		e.err = fmt.Errorf("%s: %w", path, err)
	}

	c.entries[key] = e

	return e.schema, e.err
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

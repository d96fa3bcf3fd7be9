// Package tags loads the descriptive metadata attached to tag labels.
package tags

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/henryaj/heycochrane/pkg/core"
)

// Store holds the tag metadata of one render invocation.
// The zero value is not usable; create stores with NewStore.
type Store struct {
	mu   sync.RWMutex
	meta core.TagMetadata
	path string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{meta: core.TagMetadata{}}
}

// Load reads the metadata file at path and replaces the current state.
// A missing file leaves the store empty; only unreadable or malformed files
// are errors. The decoder is picked from the extension (.toml, .json,
// anything else is YAML).
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.replace(path, core.TagMetadata{})
			return nil
		}
		return &core.IOError{Op: "read", Path: path, Err: err}
	}

	meta, err := decode(filepath.Ext(path), data)
	if err != nil {
		return &core.ParseError{Source: path, Err: err}
	}
	s.replace(path, meta)
	return nil
}

func (s *Store) replace(path string, meta core.TagMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = meta
	s.path = path
}

// Lookup returns a copy of the current mapping.
func (s *Store) Lookup() core.TagMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(core.TagMetadata, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}

// Info returns the metadata for one label. Unknown labels, and labels
// without a display name, are named after the label itself.
func (s *Store) Info(label string) core.TagInfo {
	s.mu.RLock()
	info := s.meta[label]
	s.mu.RUnlock()

	if info.Name == "" {
		info.Name = label
	}
	return info
}

// Len returns the number of known labels.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}

// Path returns the file the store was last loaded from.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func decode(ext string, data []byte) (core.TagMetadata, error) {
	meta := core.TagMetadata{}
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &meta)
	case ".json":
		if len(bytes.TrimSpace(data)) == 0 {
			return meta, nil
		}
		err = json.Unmarshal(data, &meta)
	default:
		err = yaml.Unmarshal(data, &meta)
	}
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = core.TagMetadata{}
	}
	return meta, nil
}

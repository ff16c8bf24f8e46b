package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tweaks-labs/tweaks/internal/platform"
	"github.com/tweaks-labs/tweaks/internal/tweak"
	"go.yaml.in/yaml/v3"
)

// Permissions for the overrides file and its directory.
const (
	DirPerm  os.FileMode = 0700
	FilePerm os.FileMode = 0600
)

// FileStore keeps overrides in a flat YAML map of identifier to scalar.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// OpenFile returns a FileStore at path. The file is created lazily on the
// first write, but an existing file must parse.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("overrides file path is empty")
	}
	s := &FileStore{path: path}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) All() (map[string]tweak.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Put(id string, v tweak.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("storing %q: %w", id, tweak.ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[id] = v
	return s.write(values)
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[id]; !ok {
		return nil
	}
	delete(values, id)
	return s.write(values)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (map[string]tweak.Value, error) {
	values := make(map[string]tweak.Value)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading overrides file %s: %w", s.path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing overrides file %s: %w", s.path, err)
	}
	for id, r := range raw {
		v, err := tweak.FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("overrides file %s: tweak %q: %w", s.path, id, err)
		}
		values[id] = v
	}
	return values, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *FileStore) write(values map[string]tweak.Value) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating overrides directory %s: %w", dir, err)
	}

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range ids {
		var val yaml.Node
		if err := val.Encode(values[id].Interface()); err != nil {
			return fmt.Errorf("encoding %q: %w", id, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id}, &val)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".overrides-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := platform.Chmod(tmpName, FilePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing overrides file %s: %w", s.path, err)
	}
	return nil
}

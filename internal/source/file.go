package source

import (
	"path/filepath"
	"strings"

	"github.com/tweaks-labs/tweaks/internal/manifest"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// File is a read-only source backed by a tweaks manifest on disk.
type File struct {
	name   string
	path   string
	tweaks map[string]tweak.Tweak
	order  []string
}

// OpenFile parses the manifest at path. A malformed manifest is an error and
// no source is returned. The source is named after the file's base name
// without its extension, prefixed with "defaults:".
func OpenFile(path string) (*File, error) {
	tweaks, err := manifest.ParseFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	name := "defaults:" + strings.TrimSuffix(base, filepath.Ext(base))
	return newFile(name, path, tweaks), nil
}

// NewFileFromBytes builds a File source from manifest bytes already in memory.
func NewFileFromBytes(name string, data []byte) (*File, error) {
	tweaks, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	return newFile(name, "", tweaks), nil
}

func newFile(name, path string, tweaks []tweak.Tweak) *File {
	f := &File{
		name:   name,
		path:   path,
		tweaks: make(map[string]tweak.Tweak, len(tweaks)),
		order:  make([]string, 0, len(tweaks)),
	}
	for _, t := range tweaks {
		t.Source = name
		f.tweaks[t.Identifier] = t
		f.order = append(f.order, t.Identifier)
	}
	return f
}

func (f *File) Name() string { return f.name }

// Path returns the manifest path, or "" for in-memory manifests.
func (f *File) Path() string { return f.path }

func (f *File) Lookup(id string) (tweak.Tweak, bool) {
	t, ok := f.tweaks[id]
	return t, ok
}

func (f *File) Tweaks() []tweak.Tweak {
	out := make([]tweak.Tweak, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.tweaks[id])
	}
	return out
}

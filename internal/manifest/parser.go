package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tweaks-labs/tweaks/internal/tweak"
	"go.yaml.in/yaml/v3"
)

var (
	// ErrInvalid is returned when a manifest violates the schema.
	ErrInvalid = errors.New("invalid tweaks manifest")
	// ErrUnsupportedFormat is returned for a format_version outside SupportedFormats.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
)

// Parse validates data and decodes it into tweaks sorted by identifier.
// Schema violations are joined into a single ErrInvalid error.
func Parse(data []byte) ([]tweak.Tweak, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			msgs = append(msgs, issue.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := CheckFormatVersion(m.FormatVersion); err != nil {
		return nil, err
	}

	tweaks := make([]tweak.Tweak, 0, len(m.Tweaks))
	for id, e := range m.Tweaks {
		v, err := tweak.FromAny(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: tweak %q: %v", ErrInvalid, id, err)
		}
		tweaks = append(tweaks, tweak.Tweak{
			Identifier:  id,
			Value:       v,
			Title:       e.Title,
			Group:       e.Group,
			Description: e.Description,
			Hidden:      e.Hidden,
			ReadOnly:    e.ReadOnly,
		})
	}
	tweak.SortByIdentifier(tweaks)
	return tweaks, nil
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) ([]tweak.Tweak, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	tweaks, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return tweaks, nil
}

// Marshal encodes tweaks as a YAML manifest at CurrentFormat. The Source
// field is not part of the format and is dropped.
func Marshal(tweaks []tweak.Tweak) ([]byte, error) {
	m := Manifest{
		FormatVersion: CurrentFormat,
		Tweaks:        make(map[string]Entry, len(tweaks)),
	}
	for _, t := range tweaks {
		if !t.Value.IsValid() {
			return nil, fmt.Errorf("tweak %q: %w", t.Identifier, tweak.ErrInvalidValue)
		}
		m.Tweaks[t.Identifier] = Entry{
			Value:       t.Value.Interface(),
			Title:       t.Title,
			Group:       t.Group,
			Description: t.Description,
			Hidden:      t.Hidden,
			ReadOnly:    t.ReadOnly,
		}
	}
	return yaml.Marshal(&m)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

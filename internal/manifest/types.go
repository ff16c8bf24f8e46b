package manifest

// Manifest is the on-disk form of a tweaks defaults file.
type Manifest struct {
	FormatVersion string           `yaml:"format_version,omitempty" json:"format_version,omitempty"`
	Tweaks        map[string]Entry `yaml:"tweaks" json:"tweaks"`
}

// Entry describes one tweak in a manifest. Value holds the decoded scalar
// (bool, number or string) until it is converted into a tweak.Value.
type Entry struct {
	Value       interface{} `yaml:"value" json:"value"`
	Title       string      `yaml:"title,omitempty" json:"title,omitempty"`
	Group       string      `yaml:"group,omitempty" json:"group,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Hidden      bool        `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	ReadOnly    bool        `yaml:"read_only,omitempty" json:"read_only,omitempty"`
}

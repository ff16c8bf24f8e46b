package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CurrentFormat is the format_version written by Marshal and assumed when a
// manifest omits the field.
const CurrentFormat = "1.0.0"

// SupportedFormats is the semver constraint a manifest's format_version must satisfy.
const SupportedFormats = "^1.0"

// CheckFormatVersion reports an error when version is not parseable or falls
// outside SupportedFormats. An empty version is treated as CurrentFormat.
func CheckFormatVersion(version string) error {
	if version == "" {
		version = CurrentFormat
	}
	v, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("parsing format_version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		return fmt.Errorf("parsing constraint %q: %w", SupportedFormats, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: format_version %s does not satisfy %s", ErrUnsupportedFormat, v, SupportedFormats)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}

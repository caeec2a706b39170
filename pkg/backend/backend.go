// Package backend holds the per-VCS knowledge: backend types, native
// command tables and revision-log parsing rules.
package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies one of the supported version-control systems.
type Type string

// Supported backend types. The set is closed: anything else is an
// unsupported-backend condition.
const (
	Subversion Type = "subversion"
	Git        Type = "git"
	Mercurial  Type = "mercurial"
)

// ErrUnsupportedBackend is returned for backend type strings outside the
// supported set.
var ErrUnsupportedBackend = errors.New("unsupported backend")

// ParseType validates a backend type string as reported by the probe.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Subversion, Git, Mercurial:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}

// Descriptor identifies a probed repository: its backend type and canonical
// URL. Immutable after creation.
type Descriptor struct {
	Type Type
	URL  string
}

// NewDescriptor builds a descriptor with URL normalization applied: a
// subversion repository given as an absolute path is rewritten to a file://
// URL. The rewrite happens exactly once; URLs that already carry a scheme
// pass through unchanged.
func NewDescriptor(t Type, rawURL string) Descriptor {
	if t == Subversion && strings.HasPrefix(rawURL, "/") {
		rawURL = "file://" + rawURL
	}
	return Descriptor{Type: t, URL: rawURL}
}

// LocalPath returns the repository's filesystem path. For git and mercurial
// the URL already is the checkout path; for subversion a file:// URL
// converts back to a path.
func (d Descriptor) LocalPath() string {
	return strings.TrimPrefix(d.URL, "file://")
}

// Package coord defines the coordinate model for dependency resolution.
//
// A library is identified by a [Lib] (namespace + name). Where the library
// comes from is described by a [Coord], a tagged variant carrying
// provider-specific fields (Maven version, local path, git URL/rev). The
// resolution core treats coordinates opaquely and delegates all semantic
// operations to the provider registered for the coordinate's [Type].
package coord

import (
	"fmt"
	"strings"
)

// Lib identifies a library by group (namespace) and name.
// Equality is structural; Lib is usable as a map key.
//
// A name may carry a sub-library suffix after '$' (e.g. "guava$tests").
// Exclusion matching operates on the pre-'$' base name; see [Lib.Base].
type Lib struct {
	Group string
	Name  string
}

// ParseLib parses "group/name" or a bare "name" (group defaults to name).
func ParseLib(s string) (Lib, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Lib{}, fmt.Errorf("empty lib")
	}
	switch parts := strings.SplitN(s, "/", 2); len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Lib{}, fmt.Errorf("invalid lib %q", s)
		}
		return Lib{Group: parts[0], Name: parts[1]}, nil
	default:
		return Lib{Group: s, Name: s}, nil
	}
}

// String returns "group/name".
func (l Lib) String() string {
	if l.Group == "" && l.Name == "" {
		return ""
	}
	return l.Group + "/" + l.Name
}

// Base strips everything after '$' in the name, yielding the base library.
// Libs without a '$' suffix are returned unchanged.
func (l Lib) Base() Lib {
	if i := strings.IndexByte(l.Name, '$'); i >= 0 {
		return Lib{Group: l.Group, Name: l.Name[:i]}
	}
	return l
}

// IsZero reports whether l is the zero Lib.
func (l Lib) IsZero() bool { return l.Group == "" && l.Name == "" }

// MarshalText encodes the lib as "group/name" so Lib works as a JSON map key.
func (l Lib) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText decodes "group/name".
func (l *Lib) UnmarshalText(text []byte) error {
	parsed, err := ParseLib(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Type tags a coordinate with its provider.
type Type string

// Supported coordinate types.
const (
	TypeMaven Type = "maven"
	TypeLocal Type = "local"
	TypeGit   Type = "git"
)

// Manifest selects how dependencies are discovered for a coordinate.
type Manifest string

// Manifest kinds.
const (
	ManifestNone Manifest = ""     // not yet detected
	ManifestPOM  Manifest = "pom"  // Maven POM
	ManifestDeps Manifest = "deps" // deps.toml project manifest
)

// Coord describes where a library version comes from. Exactly the fields
// relevant to Type are set; the rest stay zero. The resolution core never
// inspects provider fields directly.
type Coord struct {
	Type Type `json:"type,omitempty" toml:"type,omitempty"`

	// Maven
	Version string `json:"version,omitempty" toml:"version,omitempty"`

	// Local project
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	// Git
	URL string `json:"url,omitempty" toml:"url,omitempty"`
	Rev string `json:"rev,omitempty" toml:"rev,omitempty"`

	// Exclusions suppresses the listed libs transitively under this edge.
	Exclusions []Lib `json:"exclusions,omitempty" toml:"exclusions,omitempty"`

	// Manifest marks how dependencies are discovered; providers fill it in
	// when unset.
	Manifest Manifest `json:"manifest,omitempty" toml:"manifest,omitempty"`

	// Root is the directory treated as the current directory when reading
	// this coordinate's manifest. Set by providers during canonicalization.
	Root string `json:"root,omitempty" toml:"-"`
}

// IsZero reports whether the coordinate is entirely unset, i.e. the edge
// declared a lib without saying where it comes from. Such edges fall back
// to default-deps during expansion.
func (c Coord) IsZero() bool {
	return c.Type == "" && c.Version == "" && c.Path == "" && c.URL == "" && c.Rev == ""
}

// ID is a provider-dependent identity that collapses logically equivalent
// coordinates (e.g. the same version string seen through different edges).
type ID string

// Dep pairs a library with the coordinate an edge declared for it.
type Dep struct {
	Lib   Lib
	Coord Coord
}

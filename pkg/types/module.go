package types

import (
	"fmt"
	"strings"
)

// LinkKind is how a link's destination is materialized from its source
type LinkKind int

const (
	// LinkFile copies the source content to the destination
	LinkFile LinkKind = iota
	// LinkHardLink hard-links the destination to the cached source
	LinkHardLink
	// LinkSymlink points the destination at the cached source
	LinkSymlink
)

func (k LinkKind) String() string {
	switch k {
	case LinkFile:
		return "file"
	case LinkHardLink:
		return "hardlink"
	case LinkSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// ParseLinkKind parses the configuration spelling of a link kind
func ParseLinkKind(s string) (LinkKind, error) {
	switch strings.ToLower(s) {
	case "file", "copy":
		return LinkFile, nil
	case "hardlink", "hard":
		return LinkHardLink, nil
	case "symlink", "link":
		return LinkSymlink, nil
	default:
		return 0, fmt.Errorf("unknown link kind %q", s)
	}
}

// SourceKind identifies which variant of SourceSpec is populated
type SourceKind int

const (
	SourceText SourceKind = iota
	SourcePath
	SourceSymlink
	SourceURL
)

func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	case SourcePath:
		return "path"
	case SourceSymlink:
		return "symlink"
	case SourceURL:
		return "url"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// SourceSpec describes where the content backing a link comes from.
// Exactly one of Text, Path, Target or URL is meaningful, selected by Kind.
type SourceSpec struct {
	Kind SourceKind

	// Text is the literal content of a SourceText
	Text string

	// Path is a local path for SourcePath; it may start with ~ or ~user
	Path string

	// Target is the literal symlink target for SourceSymlink
	Target string

	// URL is fetched for SourceURL
	URL string

	// Digest is the expected content digest (hex), empty when unverified
	Digest string
}

// Key returns a string that changes whenever the content definition
// changes. The expected digest is not part of the key.
func (s *SourceSpec) Key() string {
	switch s.Kind {
	case SourceText:
		return "text\x00" + s.Text
	case SourcePath:
		return "path\x00" + s.Path
	case SourceSymlink:
		return "symlink\x00" + s.Target
	case SourceURL:
		return "url\x00" + s.URL
	default:
		return fmt.Sprintf("unknown\x00%d", int(s.Kind))
	}
}

// Describe returns a short human readable description of the source
func (s *SourceSpec) Describe() string {
	switch s.Kind {
	case SourceText:
		return fmt.Sprintf("text (%d bytes)", len(s.Text))
	case SourcePath:
		return "path " + s.Path
	case SourceSymlink:
		return "symlink -> " + s.Target
	case SourceURL:
		return "url " + s.URL
	default:
		return s.Kind.String()
	}
}

// NamedSource is a source identified by a user-chosen name. A nil Spec
// means the source is static: its content is shipped in the named source
// directory and never fetched.
type NamedSource struct {
	Name   string
	Spec   *SourceSpec
	Digest string
}

// Static reports whether the source has no fetchable definition
func (n *NamedSource) Static() bool {
	return n.Spec == nil
}

// ExpectedDigest returns the digest the source content must match, if any
func (n *NamedSource) ExpectedDigest() string {
	if n.Digest != "" {
		return n.Digest
	}
	if n.Spec != nil {
		return n.Spec.Digest
	}
	return ""
}

// SourceRef is what a link declares as its source: either the name of a
// named source or an anonymous inline spec.
type SourceRef struct {
	Name string
	Spec *SourceSpec
}

// Named reports whether the reference points at a named source
func (r SourceRef) Named() bool {
	return r.Name != ""
}

func (r SourceRef) String() string {
	if r.Named() {
		return "source " + r.Name
	}
	if r.Spec != nil {
		return r.Spec.Describe()
	}
	return "<no source>"
}

// LinkSpec is one desired filesystem entry declared by a module
type LinkSpec struct {
	// Path is the destination as declared: absolute, ~, ~user, or
	// relative to the current user's home directory
	Path   string
	Kind   LinkKind
	Source SourceRef
}

// Module is a named bundle of links plus the modules it imports
type Module struct {
	Name    string
	Imports []string
	Links   []LinkSpec

	// User and Group name the owner created entries are chowned to.
	// Empty means the process identity.
	User  string
	Group string
}

// Registry supplies module and named source definitions
type Registry interface {
	// Module returns the named module; unknown names yield a NOT_FOUND
	// error and malformed definitions a CONFIGURATION error
	Module(name string) (*Module, error)

	// Modules returns all module names in sorted order
	Modules() []string

	// Source returns the definition of a named source
	Source(name string) (*NamedSource, error)

	// Sources returns all defined source names in sorted order
	Sources() []string
}

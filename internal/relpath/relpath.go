// Package relpath holds the library-relative path of a track, as a list of segments.
package relpath

import (
	"slices"
	"strings"
)

const separator = "/"

// RelativePath is an immutable sequence of non-empty path segments.
// The zero value is the empty path.
type RelativePath struct {
	segments []string
}

// Parse splits path on "/" dropping empty segments, so "A//B/" and "A/B" are equal.
func Parse(path string) RelativePath {
	parts := strings.Split(path, separator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return RelativePath{segments: segments}
}

// Of builds a path from already split segments. Segments are themselves parsed so that
// a segment containing "/" can never sneak in.
func Of(segments ...string) RelativePath {
	return Parse(strings.Join(segments, separator))
}

// Segments returns a copy of the segments.
func (p RelativePath) Segments() []string {
	return slices.Clone(p.segments)
}

func (p RelativePath) Len() int {
	return len(p.segments)
}

func (p RelativePath) IsEmpty() bool {
	return len(p.segments) == 0
}

// Name is the last segment, or "" for the empty path.
func (p RelativePath) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent is the path without its last segment.
func (p RelativePath) Parent() RelativePath {
	if len(p.segments) <= 1 {
		return RelativePath{}
	}
	return RelativePath{segments: slices.Clone(p.segments[:len(p.segments)-1])}
}

// PrefixedWith returns prefix followed by the path's segments. The receiver is not modified.
func (p RelativePath) PrefixedWith(prefix ...string) []string {
	out := make([]string, 0, len(prefix)+len(p.segments))
	out = append(out, prefix...)
	return append(out, p.segments...)
}

func (p RelativePath) Equal(other RelativePath) bool {
	return slices.Equal(p.segments, other.segments)
}

func (p RelativePath) String() string {
	return strings.Join(p.segments, separator)
}

func (p RelativePath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *RelativePath) UnmarshalText(text []byte) error {
	*p = Parse(string(text))
	return nil
}

// Package fieldpath normalizes the two field-path notations used by the
// validation layers into one canonical address form.
//
// The external schema validator emits slash-delimited paths with bracketed
// array markers ("/health_status[0]/term") while local structural validation
// emits dot-delimited paths with bare numeric segments ("health_status.0.term").
// Both normalize to the same Path.
package fieldpath

import (
	"strconv"
	"strings"
)

// Segment is one step of a canonical path: either a field name or a
// non-negative list index.
type Segment struct {
	Name  string
	Index int
	IsIdx bool
}

// Field returns a field-name segment.
func Field(name string) Segment { return Segment{Name: name} }

// Index returns a list-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIdx: true} }

// Path is an ordered sequence of segments addressing a location inside a
// nested record.
type Path []Segment

// ParseSlash parses the slash notation ("/a/b[0]/c"). A leading slash is
// optional; empty segments are skipped.
func ParseSlash(raw string) Path {
	raw = strings.TrimPrefix(raw, "/")
	if raw == "" {
		return nil
	}
	var path Path
	for _, part := range strings.Split(raw, "/") {
		if part == "" {
			continue
		}
		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				if part != "" {
					path = append(path, segmentFor(part))
				}
				break
			}
			if open > 0 {
				path = append(path, segmentFor(part[:open]))
			}
			end := strings.IndexByte(part, ']')
			if end < open {
				break
			}
			if idx, err := strconv.Atoi(part[open+1 : end]); err == nil && idx >= 0 {
				path = append(path, Index(idx))
			}
			part = part[end+1:]
		}
	}
	return path
}

// ParseDot parses the dot notation ("a.b.0.c"). Bare numeric segments become
// indices.
func ParseDot(raw string) Path {
	if raw == "" {
		return nil
	}
	var path Path
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			continue
		}
		path = append(path, segmentFor(part))
	}
	return path
}

func segmentFor(part string) Segment {
	if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
		return Index(idx)
	}
	return Field(part)
}

// String renders the canonical dot form.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		if seg.IsIdx {
			b.WriteString(strconv.Itoa(seg.Index))
		} else {
			b.WriteString(seg.Name)
		}
	}
	return b.String()
}

// Child returns a copy of the path extended by one segment.
func (p Path) Child(seg Segment) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, seg)
}


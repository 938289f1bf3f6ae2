// Package routepath parses routed locations.
//
// A routed location is the part of the addressable location that the
// router owns: for a fragment-based host, "#/publish-video?tab=1" carries
// the routed location "/publish-video?tab=1".
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Location is a canonical routed location.
type Location struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the raw query string without the leading "?".
	Query string
}

// Location parse errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-wildcard segment")
)

// String returns the location as "/path?query".
func (l Location) String() string {
	return JoinPathAndQuery(l.Path, l.Query)
}

// Fragment returns the location in addressable form ("#/path?query").
func (l Location) Fragment() string {
	return "#" + l.String()
}

// Segments returns the raw (still escaped) path segments.
func (l Location) Segments() []string {
	return SplitSegments(l.Path)
}

// StripFragment removes history-scheme markers from a location so that
// only the routed portion remains. It accepts full URLs
// ("https://host/app/#/about"), fragments ("#/about", "#about"),
// hashbang fragments ("#!/about") and plain paths ("/about").
func StripFragment(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, after, ok := strings.Cut(raw, "#"); ok {
		return strings.TrimPrefix(after, "!")
	}
	return raw
}

// Normalize turns any accepted location form into a canonical Location.
// The fragment markers are stripped, then the path is cleaned: empty,
// "." and repeated-slash segments disappear, ".." pops its parent and
// a trailing slash is dropped. The query is kept verbatim.
//
// Backslashes, NUL bytes (literal or %00), malformed escapes and ".."
// above the root are rejected.
func Normalize(raw string) (Location, error) {
	path, query, _ := strings.Cut(StripFragment(raw), "?")
	clean, err := CleanPath(path)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: clean, Query: query}, nil
}

// CleanPath applies the path half of Normalize to a bare path.
// Route patterns go through it so they compare equal to the locations
// they match.
func CleanPath(path string) (string, error) {
	var kept []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) {
			switch path[i] {
			case '\\':
				return "", ErrBackslashInPath
			case 0:
				return "", ErrNullByteInPath
			case '%':
				if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
					return "", ErrInvalidPercentEscape
				}
				if path[i+1] == '0' && path[i+2] == '0' {
					return "", ErrNullByteInPath
				}
				i += 2
				continue
			case '/':
			default:
				continue
			}
		}

		seg := path[start:i]
		start = i + 1
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return "", ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}
	return "/" + strings.Join(kept, "/"), nil
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}

// DecodeSegment unescapes one segment of a cleaned path. Unless
// allowSlash is set, a segment that decodes to contain "/" is refused,
// since it would stand in for more than one segment.
func DecodeSegment(segment string, allowSlash bool) (string, error) {
	if !strings.Contains(segment, "%") {
		return segment, nil
	}
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !allowSlash && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// SplitSegments splits a cleaned path into its raw segments.
// The root path has none.
func SplitSegments(path string) []string {
	if path = strings.Trim(path, "/"); path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// SplitPathAndQuery splits "/path?query" at the first "?".
func SplitPathAndQuery(location string) (path, query string) {
	path, query, _ = strings.Cut(location, "?")
	return path, query
}

// JoinPathAndQuery is the inverse of SplitPathAndQuery.
func JoinPathAndQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

// Fragment converts a routed location into the addressable fragment form.
// Fragment("/about") == "#/about"; Fragment("") == "#/".
func Fragment(location string) string {
	location = StripFragment(location)
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return "#" + location
}

// ValidateNavLocation canonicalizes a location supplied by an untrusted
// peer (a browser tab). Absolute URLs and protocol-relative locations are
// rejected so a peer cannot smuggle an off-site target into history.
func ValidateNavLocation(raw string) (Location, error) {
	routed := StripFragment(raw)
	for _, prefix := range []string{"http://", "https://", "//"} {
		if strings.HasPrefix(routed, prefix) {
			return Location{}, ErrInvalidPath
		}
	}
	return Normalize(routed)
}

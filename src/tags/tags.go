// Package tags converts between the tag list used by the services and the
// comma-joined column stored on posts.
package tags

import (
	"errors"
	"regexp"
	"strings"
)

// Sentinel is what the posts.tags column holds when a post has no tags.
const Sentinel = "no-tags"

const separator = ","

var (
	ErrInvalidTag = errors.New("invalid tag")

	tagRegex = regexp.MustCompile(`^[\p{L}\p{N}_-]{1,32}$`)
)

// Normalize trims and lowercases a tag and checks its characters.
func Normalize(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == Sentinel || !tagRegex.MatchString(tag) {
		return "", ErrInvalidTag
	}
	return tag, nil
}

// Parse reads a stored column value. The sentinel and the empty string both mean "no tags".
func Parse(stored string) []string {
	out := []string{}
	for _, part := range strings.Split(stored, separator) {
		part = strings.TrimSpace(part)
		if part == "" || part == Sentinel {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Join builds the stored column value, substituting the sentinel for an empty list.
func Join(list []string) string {
	var kept []string
	for _, tag := range list {
		if tag != "" && tag != Sentinel {
			kept = append(kept, tag)
		}
	}
	if len(kept) == 0 {
		return Sentinel
	}
	return strings.Join(kept, separator)
}

// FromInput normalizes a user supplied "a, b, c" string, dropping duplicates.
func FromInput(raw string) ([]string, error) {
	out := []string{}
	for _, part := range strings.Split(raw, separator) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tag, err := Normalize(part)
		if err != nil {
			return nil, err
		}
		if !Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out, nil
}

// Toggle removes tag when present, otherwise appends it. The input slice is not modified.
func Toggle(list []string, tag string) []string {
	out := make([]string, 0, len(list)+1)
	removed := false
	for _, t := range list {
		if t == tag {
			removed = true
			continue
		}
		out = append(out, t)
	}
	if !removed {
		out = append(out, tag)
	}
	return out
}

func Contains(list []string, tag string) bool {
	for _, t := range list {
		if t == tag {
			return true
		}
	}
	return false
}

package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/theleywin/Backend-Meme-Nest/src/tags"
)

// SearchQuery is a parsed search box input.
type SearchQuery struct {
	Include []string
	Exclude []string
	Terms   []string
}

func (q SearchQuery) IsEmpty() bool {
	return len(q.Include) == 0 && len(q.Exclude) == 0 && len(q.Terms) == 0
}

// ParseSearchQuery reads `#tag` or `+tag` (must have), `-tag` (must not have),
// `"quoted phrase"` and bare words (free text).
func ParseSearchQuery(raw string) (SearchQuery, error) {
	q := SearchQuery{Include: []string{}, Exclude: []string{}, Terms: []string{}}
	runes := []rune(raw)

	for i := 0; i < len(runes); {
		switch {
		case unicode.IsSpace(runes[i]):
			i++

		case runes[i] == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			if end == len(runes) {
				return SearchQuery{}, fmt.Errorf("%w: unbalanced quote in search", ErrValidation)
			}
			if phrase := strings.Join(strings.Fields(string(runes[i+1:end])), " "); phrase != "" {
				q.Terms = append(q.Terms, phrase)
			}
			i = end + 1

		default:
			end := i
			for end < len(runes) && !unicode.IsSpace(runes[end]) && runes[end] != '"' {
				end++
			}
			token := string(runes[i:end])
			i = end

			switch token[0] {
			case '#', '+', '-':
				tag, err := tags.Normalize(token[1:])
				if err != nil {
					return SearchQuery{}, fmt.Errorf("%w: bad tag filter %q", ErrValidation, token)
				}
				if token[0] == '-' {
					q.Exclude = appendUnique(q.Exclude, tag)
				} else {
					q.Include = appendUnique(q.Include, tag)
				}
			default:
				q.Terms = append(q.Terms, token)
			}
		}
	}
	return q, nil
}

func appendUnique(list []string, v string) []string {
	if tags.Contains(list, v) {
		return list
	}
	return append(list, v)
}

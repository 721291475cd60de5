package application

import (
	"strings"
	"unicode"
)

// splitHashtags breaks raw hashtag input on commas and whitespace.
func splitHashtags(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// InvalidHashtags returns the tokens that are not an alphanumeric word with at most one
// leading '#'.
func InvalidHashtags(raw string) []string {
	var bad []string
	for _, token := range splitHashtags(raw) {
		word := strings.TrimPrefix(token, "#")
		if word == "" || !isAlphanumeric(word) {
			bad = append(bad, token)
		}
	}
	return bad
}

// NormalizeHashtags returns the tags of raw, each prefixed with a single '#', joined with
// ", ". Tags equal ignoring case are kept once, first spelling wins.
func NormalizeHashtags(raw string) string {
	return strings.Join(HashtagList(raw), ", ")
}

// HashtagList is NormalizeHashtags without the final join.
func HashtagList(raw string) []string {
	tokens := splitHashtags(raw)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		word := strings.TrimLeft(token, "#")
		if word == "" {
			continue
		}
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, "#"+word)
	}
	return out
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

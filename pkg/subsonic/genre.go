package subsonic

import (
	"strings"
)

// genreDelimiters in precedence order: the first delimiter present in
// the string wins. Servers disagree on how multi-genre tags are joined;
// this heuristic covers the common cases and is a convenience, not part
// of the protocol.
var genreDelimiters = []string{";", "/", ","}

// SplitGenres splits a server-reported genre string into individual
// genre names. Empty segments are dropped and whitespace is trimmed.
// Returns nil for an empty input. This normalization is optional and is
// never applied implicitly by the catalog browser.
func SplitGenres(genre string) []string {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil
	}

	for _, delim := range genreDelimiters {
		if !strings.Contains(genre, delim) {
			continue
		}
		var out []string
		for _, part := range strings.Split(genre, delim) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []string{genre}
}

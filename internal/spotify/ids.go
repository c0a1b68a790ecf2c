package spotify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spotcat/spotcat/internal/shared"
)

// Kind is the type of catalog entity an identifier names.
type Kind string

const (
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
	KindPlaylist Kind = "playlist"
)

const (
	// Spotify IDs are 22 base62 characters.
	idLength = 22

	// Input guards for the multi-line parser.
	maxInputLength = 10000
	maxInputItems  = 1000
)

var (
	idPattern     = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)
	marketPattern = regexp.MustCompile(`^[A-Z]{2}$`)

	urlPatterns = map[Kind]*regexp.Regexp{
		KindTrack:    regexp.MustCompile(`spotify\.com/track/([a-zA-Z0-9]{22})`),
		KindAlbum:    regexp.MustCompile(`spotify\.com/album/([a-zA-Z0-9]{22})`),
		KindArtist:   regexp.MustCompile(`spotify\.com/artist/([a-zA-Z0-9]{22})`),
		KindPlaylist: regexp.MustCompile(`spotify\.com/playlist/([a-zA-Z0-9]{22})`),
	}
)

// ValidID reports whether s is a well-formed Spotify ID.
func ValidID(s string) bool {
	return len(s) == idLength && idPattern.MatchString(s)
}

// ValidMarket reports whether s is a well-formed market code (ISO 3166-1 alpha-2).
func ValidMarket(s string) bool {
	return marketPattern.MatchString(s)
}

// NormalizeMarket upper-cases and validates a market code.
func NormalizeMarket(s string) (string, error) {
	market := strings.ToUpper(strings.TrimSpace(s))
	if !ValidMarket(market) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidMarket, s)
	}
	return market, nil
}

// ParseID extracts a Spotify ID of the given kind from user input.
//
// Accepted forms:
//   - bare ID: 4iV5W9uYEdYUVa79Axb7Rh
//   - URI:     spotify:track:4iV5W9uYEdYUVa79Axb7Rh
//   - URL:     https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh
//
// Parsing is idempotent: a bare valid ID parses to itself. Anything else is
// rejected with [shared.ErrInvalidID]; malformed input is never sent to the
// network.
func ParseID(input string, kind Kind) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty input", shared.ErrInvalidID)
	}
	if len(input) > maxInputLength {
		return "", fmt.Errorf("%w: %d characters", shared.ErrInputTooLong, len(input))
	}

	if prefix := "spotify:" + string(kind) + ":"; strings.HasPrefix(input, prefix) {
		id := input[len(prefix):]
		if ValidID(id) {
			return id, nil
		}
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidID, input)
	}

	if m := urlPatterns[kind].FindStringSubmatch(input); m != nil {
		return m[1], nil
	}

	if ValidID(input) {
		return input, nil
	}

	return "", fmt.Errorf("%w: %q", shared.ErrInvalidID, input)
}

// ParseIDs extracts valid Spotify IDs from a multi-line input blob, one entry
// per line. Blank lines are skipped; invalid entries are counted and dropped
// rather than failing the whole parse. Entry order is preserved.
func ParseIDs(input string, kind Kind) (ids []string, rejected int, err error) {
	if strings.TrimSpace(input) == "" {
		return nil, 0, nil
	}
	if len(input) > maxInputLength {
		return nil, 0, fmt.Errorf("%w: %d characters", shared.ErrInputTooLong, len(input))
	}

	var entries []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	if len(entries) > maxInputItems {
		return nil, 0, fmt.Errorf("%w: %d entries (max %d)", shared.ErrTooManyItems, len(entries), maxInputItems)
	}

	for _, entry := range entries {
		id, perr := ParseID(entry, kind)
		if perr != nil {
			rejected++
			continue
		}
		ids = append(ids, id)
	}
	return ids, rejected, nil
}

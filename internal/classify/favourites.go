package classify

import (
	"bufio"
	"os"
	"strings"

	"github.com/yegors/skyalert/internal/adsb"
)

// Favourites is a set of uppercased identifiers and callsigns that are
// always of interest. Loaded once at startup and never mutated.
type Favourites map[string]struct{}

// LoadFavourites reads a favourites file: one identifier-or-callsign
// token per line, blank lines ignored, tokens stored uppercased.
func LoadFavourites(path string) (Favourites, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	favs := make(Favourites)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		favs[strings.ToUpper(token)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return favs, nil
}

// Contains reports whether the aircraft's identifier or trimmed callsign
// is a favourite. Matching is case-insensitive.
func (f Favourites) Contains(a adsb.Aircraft) bool {
	if len(f) == 0 {
		return false
	}
	if _, ok := f[strings.ToUpper(a.ID)]; ok {
		return true
	}
	callsign := strings.ToUpper(strings.TrimSpace(a.Callsign))
	if callsign == "" {
		return false
	}
	_, ok := f[callsign]
	return ok
}

// Tokens returns the favourite tokens in no particular order; used for
// startup logging.
func (f Favourites) Tokens() []string {
	tokens := make([]string, 0, len(f))
	for t := range f {
		tokens = append(tokens, t)
	}
	return tokens
}

// Package classify decides which aircraft are of interest: military by
// identifier heuristics, or members of an operator-curated favourites
// set. The heuristics are data-driven prefix tables so they can be tuned
// and tested independently.
package classify

import (
	"strings"

	"github.com/yegors/skyalert/internal/adsb"
)

// militaryHexPrefixes are ICAO24 address blocks treated as military.
// Deliberately narrow; the broader candidate set below is a tuning knob
// that produces too many false positives on civil registrations.
// Candidates: "0D", "0E", "0F", "30", "34", "39", "3F", "480", "4B",
// "ADF", "C0".
var militaryHexPrefixes = []string{"43", "AE"}

// militaryCallsignPrefixes are operator/service tokens used by military,
// government, NATO and SAR flights, plus the all-zero fallback identifier
// some transponders squawk.
var militaryCallsignPrefixes = []string{
	"MIL", "NOW", "ARR", "RRR", "RAF", "NATO", "AAC", "NAF",
	"PLF", "TTN", "XXXX", "00000000",
}

// militaryTypePrefix is a reserved/non-standard category code
const militaryTypePrefix = "19"

// IsMilitary reports whether the aircraft matches the military
// heuristic: a military ICAO24 block, a military callsign token or the
// reserved type code. Identifier and callsign matching is
// case-insensitive; empty callsign and type code never match.
func IsMilitary(a adsb.Aircraft) bool {
	id := strings.ToUpper(a.ID)
	for _, prefix := range militaryHexPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}

	if a.Callsign != "" {
		callsign := strings.ToUpper(a.Callsign)
		for _, prefix := range militaryCallsignPrefixes {
			if strings.HasPrefix(callsign, prefix) {
				return true
			}
		}
	}

	return a.TypeCode != "" && strings.HasPrefix(a.TypeCode, militaryTypePrefix)
}

// OfInterest reports whether the aircraft is military or a favourite
func OfInterest(a adsb.Aircraft, favourites Favourites) bool {
	return IsMilitary(a) || favourites.Contains(a)
}

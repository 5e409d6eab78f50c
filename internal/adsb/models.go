package adsb

import (
	"strings"

	"github.com/yegors/skyalert/internal/geo"
)

// BoundingBox is the fixed lat/lon region requested from the state
// provider. It deliberately covers the whole service region rather than
// a tight box around the monitored point; filtering to the configured
// radius happens client-side.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// StateVector is one raw positional record from the OpenSky states/all
// response. Rows are fixed-position arrays of mixed types; fields the
// feed omits (null) decode to their zero value and HasPosition reports
// whether both coordinates were present.
type StateVector struct {
	ICAO24      string
	Callsign    string
	TypeCode    string
	Lon         float64
	Lat         float64
	HasPosition bool
}

// Aircraft is a single aircraft observation built from a state vector.
// Constructed fresh each polling cycle and never mutated.
type Aircraft struct {
	ID       string         `json:"id"`
	Callsign string         `json:"callsign"`
	TypeCode string         `json:"type_code"`
	Coord    geo.Coordinate `json:"coord"`
}

// FromState builds an Aircraft from a raw state vector. Callsign is
// whitespace-trimmed; missing callsign and type code stay empty.
func FromState(s StateVector) Aircraft {
	return Aircraft{
		ID:       s.ICAO24,
		Callsign: strings.TrimSpace(s.Callsign),
		TypeCode: s.TypeCode,
		Coord:    geo.Coordinate{Lon: s.Lon, Lat: s.Lat},
	}
}

// stateFromRow defensively extracts a state vector from one positional
// row. OpenSky documents: 0 icao24, 1 callsign, 2 type/category field,
// 5 longitude, 6 latitude. Any field may be null.
func stateFromRow(row []interface{}) StateVector {
	var sv StateVector

	if len(row) > 0 {
		if v, ok := row[0].(string); ok {
			sv.ICAO24 = v
		}
	}
	if len(row) > 1 {
		if v, ok := row[1].(string); ok {
			sv.Callsign = v
		}
	}
	if len(row) > 2 {
		if v, ok := row[2].(string); ok {
			sv.TypeCode = v
		}
	}

	var hasLon, hasLat bool
	if len(row) > 5 {
		if v, ok := row[5].(float64); ok {
			sv.Lon = v
			hasLon = true
		}
	}
	if len(row) > 6 {
		if v, ok := row[6].(float64); ok {
			sv.Lat = v
			hasLat = true
		}
	}
	sv.HasPosition = hasLon && hasLat

	return sv
}

// Package geo provides great-circle math between the monitored ground
// location and aircraft positions: haversine distance, initial bearing,
// 16-point compass labels and WMM magnetic declination.
package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// EarthRadiusKm is the mean spherical Earth radius used for haversine
const EarthRadiusKm = 6371.0

// Coordinate is a (longitude, latitude) pair in decimal degrees
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Position is the location of a point relative to a center
type Position struct {
	DistanceKm    float64 `json:"distance_km"`
	BearingDeg    float64 `json:"bearing_deg"`
	Cardinal      string  `json:"cardinal"`
	MagBearingDeg float64 `json:"mag_bearing_deg"`
}

// cardinalThresholds maps the start of each centered 22.5-degree sector
// to its compass label, in descending order. Bearings below the last
// threshold (11.25) wrap back to N.
var cardinalThresholds = []struct {
	deg   float64
	label string
}{
	{348.75, "N"},
	{326.25, "NNW"},
	{303.75, "NW"},
	{281.25, "WNW"},
	{258.75, "W"},
	{236.25, "WSW"},
	{213.75, "SW"},
	{191.25, "SSW"},
	{168.75, "S"},
	{146.25, "SSE"},
	{123.75, "SE"},
	{101.25, "ESE"},
	{78.75, "E"},
	{56.25, "ENE"},
	{33.75, "NE"},
	{11.25, "NNE"},
}

// Distance returns the great-circle distance in kilometers between two
// coordinates using the haversine formula on a spherical Earth.
func Distance(center, point Coordinate) float64 {
	dLat := toRadians(point.Lat - center.Lat)
	dLon := toRadians(point.Lon - center.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(center.Lat))*math.Cos(toRadians(point.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Floating point can push a marginally outside [0,1] for antipodal
	// or coincident points, which would make Sqrt(1-a) NaN.
	a = math.Max(0, math.Min(1, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Bearing returns the initial great-circle bearing in degrees [0,360)
// from center to point.
func Bearing(center, point Coordinate) float64 {
	lat1 := toRadians(center.Lat)
	lat2 := toRadians(point.Lat)
	dLon := toRadians(point.Lon - center.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := toDegrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Cardinal maps a bearing to one of 16 compass labels. Sectors are
// centered on the compass points, so N covers [348.75, 11.25).
func Cardinal(bearingDeg float64) string {
	for _, t := range cardinalThresholds {
		if bearingDeg >= t.deg {
			return t.label
		}
	}
	return "N"
}

// MagneticDeclination returns the WMM declination in degrees (+E, -W)
// at the given coordinate and time. Returns 0 if the model fails.
func MagneticDeclination(c Coordinate, at time.Time) float64 {
	loc := egm96.NewLocationGeodetic(c.Lat, c.Lon, 0)
	mag, err := wmm.CalculateWMMMagneticField(loc, at)
	if err != nil {
		return 0
	}
	return mag.D()
}

// PositionFrom computes the position of point relative to center.
// declination is subtracted from the true bearing to produce the
// magnetic bearing.
func PositionFrom(center, point Coordinate, declination float64) Position {
	bearing := Bearing(center, point)
	return Position{
		DistanceKm:    Distance(center, point),
		BearingDeg:    bearing,
		Cardinal:      Cardinal(bearing),
		MagBearingDeg: math.Mod(bearing-declination+360, 360),
	}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

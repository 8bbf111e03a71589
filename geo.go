package parkle

import "math"

// Spherical-Earth mean radii. The game reports distances in statute
// miles (the unit is a compile-time constant, not runtime state);
// DistanceKm exists for callers that want metric.
const (
	earthRadiusMiles = 3959.0
	earthRadiusKm    = 6371.0
)

// Coordinate is a point on the Earth's surface in decimal degrees.
type Coordinate struct {
	Lat float64 // [-90, 90]
	Lng float64 // [-180, 180]
}

// CompassDirection is one of the eight 45-degree compass octants.
type CompassDirection string

const (
	North     CompassDirection = "N"
	Northeast CompassDirection = "NE"
	East      CompassDirection = "E"
	Southeast CompassDirection = "SE"
	South     CompassDirection = "S"
	Southwest CompassDirection = "SW"
	West      CompassDirection = "W"
	Northwest CompassDirection = "NW"
)

// compassOctants in clockwise order starting at north. Index i covers
// bearings [i*45-22.5, i*45+22.5) modulo 360.
var compassOctants = [8]CompassDirection{
	North, Northeast, East, Southeast, South, Southwest, West, Northwest,
}

// compassArrows maps each octant to a display glyph.
var compassArrows = map[CompassDirection]string{
	North: "⬆️", Northeast: "↗️", East: "➡️", Southeast: "↘️",
	South: "⬇️", Southwest: "↙️", West: "⬅️", Northwest: "↖️",
}

// Arrow returns an arrow glyph pointing in the direction d.
func (d CompassDirection) Arrow() string {
	return compassArrows[d]
}

// Distance returns the great-circle distance between a and b in statute
// miles, using the haversine formula on a spherical Earth. It is
// symmetric and zero (to floating tolerance) iff a == b.
func Distance(a, b Coordinate) float64 {
	return haversine(a, b, earthRadiusMiles)
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers.
func DistanceKm(a, b Coordinate) float64 {
	return haversine(a, b, earthRadiusKm)
}

func haversine(a, b Coordinate, radius float64) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dlat := radians(b.Lat - a.Lat)
	dlon := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dlat / 2)
	sinLon := math.Sin(dlon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// h is mathematically in [0,1] but floating-point error can push
	// it fractionally above 1, which would make Asin return NaN.
	if h > 1 {
		h = 1
	} else if h < 0 {
		h = 0
	}

	return 2 * math.Asin(math.Sqrt(h)) * radius
}

// Bearing returns the initial bearing (forward azimuth) of the
// great-circle path from one coordinate toward another, in degrees
// clockwise from true north, normalized to [0, 360). Coincident points
// yield 0.
func Bearing(from, to Coordinate) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dlon := radians(to.Lng - from.Lng)

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Direction quantizes the initial bearing from one coordinate toward
// another into a compass octant. Sectors are 45 degrees wide, centered
// on the cardinal and intercardinal directions, with inclusive lower
// bounds at odd multiples of 22.5 (so exactly 22.5 is NE and exactly
// 337.5 is N). Coincident points deterministically map to N.
func Direction(from, to Coordinate) CompassDirection {
	if from == to {
		return North
	}
	return directionForBearing(Bearing(from, to))
}

// directionForBearing maps a bearing in [0, 360) to its octant.
func directionForBearing(bearing float64) CompassDirection {
	return compassOctants[int(math.Mod(bearing+22.5, 360)/45)]
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

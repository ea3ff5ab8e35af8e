package mission

import "math"

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BearingTo returns the great-circle initial bearing from c to to, in
// degrees within (-180, 180]. 0 is north, positive is clockwise.
func (c Coordinate) BearingTo(to Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLon := (to.Lon - c.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Atan2(y, x) * 180 / math.Pi
}

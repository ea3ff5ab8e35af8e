// Litchi binary mission encoder
package binfmt

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

const (
	// Magic opens every mission file.
	Magic int32 = 1818454125
	// Version is written regardless of the configured version.
	Version int16 = 11

	headerPadding = 10

	minCruisingSpeed = -15
	maxCruisingSpeed = 15
	minRCSpeed       = 2
	maxRCSpeed       = 15

	// noInterval fills the unused half of a photo interval pair.
	noInterval float32 = -1
)

// trailerConstants follow the second POI pass. Their meaning is unknown;
// the flight planner rejects files without them.
var trailerConstants = [3]int32{8, 8, 0}

// Encode serializes m into the Litchi binary mission format. It panics if a
// count does not fit in an int32.
func Encode(m *mission.Mission) []byte {
	var buf bytes.Buffer
	buf.Grow(Size(m))
	e := encoder{w: &buf}
	e.mission(m)
	return buf.Bytes()
}

// WriteTo encodes m and writes it to w.
func WriteTo(w io.Writer, m *mission.Mission) (int64, error) {
	n, err := w.Write(Encode(m))
	return int64(n), err
}

// Size returns the exact length of Encode(m).
func Size(m *mission.Mission) int {
	n := 4*4 + 4*2 + 4 + 2 + headerPadding // header
	n += 4                                 // waypoint count
	n += m.NumWaypoints() * (4 + 4 + 4 + 4 + 2 + 2 + 8 + 8 + 4 + 4 + 4 + 4 + 4)
	n += m.NumActions() * 8
	n += 4 + m.NumPOIs()*(8+8+4)
	n += m.NumWaypoints() * (2 + 4 + 4)
	n += m.NumPOIs() * (2 + 4)
	n += len(trailerConstants) * 4
	n += (1 + m.NumWaypoints()) * 8
	return n
}

// encoder writes big-endian values to an in-memory buffer, which cannot fail.
type encoder struct {
	w   *bytes.Buffer
	tmp [8]byte
}

func (e *encoder) i16(v int16) {
	binary.BigEndian.PutUint16(e.tmp[:2], uint16(v))
	e.w.Write(e.tmp[:2])
}

func (e *encoder) i32(v int32) {
	binary.BigEndian.PutUint32(e.tmp[:4], uint32(v))
	e.w.Write(e.tmp[:4])
}

func (e *encoder) f32(v float32) {
	binary.BigEndian.PutUint32(e.tmp[:4], math.Float32bits(v))
	e.w.Write(e.tmp[:4])
}

func (e *encoder) f64(v float64) {
	binary.BigEndian.PutUint64(e.tmp[:8], math.Float64bits(v))
	e.w.Write(e.tmp[:8])
}

func (e *encoder) count(n int, what string) {
	if n > math.MaxInt32 {
		panic("binfmt: number of " + what + " does not fit in int32")
	}
	e.i32(int32(n))
}

func (e *encoder) mission(m *mission.Mission) {
	cfg := m.Config()
	waypoints := m.Waypoints()
	pois := m.POIs()

	e.i32(Magic)
	e.i32(int32(cfg.HeadingMode))
	e.i32(int32(cfg.FinishAction))
	e.i32(int32(cfg.PathMode))
	e.f32(clamp(cfg.CruisingSpeed, minCruisingSpeed, maxCruisingSpeed))
	e.f32(clamp(cfg.RCSpeed, minRCSpeed, maxRCSpeed))
	e.i32(cfg.Repeat)
	e.i16(Version)
	e.w.Write(make([]byte, headerPadding))

	e.count(len(waypoints), "waypoints")
	for _, wp := range waypoints {
		e.f32(wp.Altitude)
		e.i32(wp.TurnMode)
		e.f32(wp.Heading)
		e.f32(wp.Speed)
		e.i16(wp.StayTime)
		e.i16(wp.MaxReachTime)
		e.f64(wp.Coordinate.Lat)
		e.f64(wp.Coordinate.Lon)
		e.f32(wp.CurveSize)
		e.i32(int32(wp.GimbalMode))
		e.i32(wp.GimbalPitchAngle)
		e.count(len(wp.Actions), "waypoint actions")
		e.i32(wp.RepeatActions)
		for _, a := range wp.Actions {
			code, param := a.Code()
			e.i32(code)
			e.i32(param)
		}
	}

	e.count(len(pois), "POIs")
	for _, p := range pois {
		e.f64(p.Coordinate.Lat)
		e.f64(p.Coordinate.Lon)
		e.f32(p.Altitude)
	}

	for _, wp := range waypoints {
		e.i16(int16(wp.AltitudeMode))
		e.f32(wp.Altitude)
		if wp.POIIndex > math.MaxInt32 {
			panic("binfmt: POI index does not fit in int32")
		}
		e.i32(int32(wp.POIIndex)) // NoPOI is -1 on the wire too
	}

	for _, p := range pois {
		e.i16(int16(p.AltitudeMode))
		e.f32(p.Altitude)
	}

	for _, c := range trailerConstants {
		e.i32(c)
	}

	e.interval(cfg.PhotoInterval)
	for _, wp := range waypoints {
		e.interval(wp.PhotoInterval)
	}
}

func (e *encoder) interval(pi *mission.PhotoInterval) {
	switch {
	case pi == nil:
		e.f32(noInterval)
		e.f32(noInterval)
	case pi.Kind == mission.IntervalDistance:
		e.f32(noInterval)
		e.f32(pi.Value)
	default:
		e.f32(pi.Value)
		e.f32(noInterval)
	}
}

// clamp limits v to [lo, hi]. NaN is passed through unchanged.
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Litchi waypoint CSV ingestion
package csvformat

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

// Column layout of a Litchi waypoint row.
const (
	RecordLength = 46

	colLatitude         = 0
	colLongitude        = 1
	colAltitude         = 2
	colHeading          = 3
	colCurveSize        = 4
	colRotationDir      = 5
	colGimbalMode       = 6
	colGimbalPitchAngle = 7

	actionsOffset = 8
	actionsEnd    = actionsOffset + mission.MaxActions*2

	colAltitudeMode          = actionsEnd
	colSpeed                 = actionsEnd + 1
	colPOILatitude           = actionsEnd + 2
	colPOILongitude          = actionsEnd + 3
	colPOIAltitude           = actionsEnd + 4
	colPOIAltitudeMode       = actionsEnd + 5
	colPhotoTimeInterval     = actionsEnd + 6
	colPhotoDistanceInterval = actionsEnd + 7
)

// noAction marks an unused action slot.
const noAction = -1

// RowReader yields one record per call and io.EOF after the last one.
// *csv.Reader satisfies it.
type RowReader interface {
	Read() ([]string, error)
}

// Option configures ReadCSV and Ingest.
type Option func(*options)

type options struct {
	header bool
	config mission.Config
}

func defaultOptions() options {
	return options{header: true, config: mission.DefaultConfig()}
}

// WithoutHeader treats the first CSV line as data.
func WithoutHeader() Option {
	return func(o *options) { o.header = false }
}

// WithConfig overrides the mission configuration attached to the result.
func WithConfig(cfg mission.Config) Option {
	return func(o *options) { o.config = cfg }
}

// ReadFile opens path and ingests it with ReadCSV.
func ReadFile(path string, opts ...Option) (*mission.Mission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts...)
}

// ReadCSV ingests a Litchi CSV export. The first line is a header unless
// WithoutHeader is given.
func ReadCSV(r io.Reader, opts ...Option) (*mission.Mission, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	// Record width is checked per row so it can be reported as a FormatError.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	if o.header {
		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return mission.New(nil, nil, o.config)
			}
			return nil, err
		}
	}
	return ingest(cr, o)
}

// Ingest builds a mission from rows. It stops at the first bad row and
// returns its error wrapped in a *mission.RowError.
func Ingest(r RowReader, opts ...Option) (*mission.Mission, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return ingest(r, o)
}

func ingest(r RowReader, o options) (*mission.Mission, error) {
	var waypoints []mission.Waypoint
	var pois poiSet

	for row := 0; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &mission.RowError{Row: row, Err: err}
		}

		wp, poi, err := parseRecord(record)
		if err != nil {
			return nil, &mission.RowError{Row: row, Err: err}
		}
		if poi != nil {
			wp.POIIndex = pois.index(*poi)
			wp.Heading = float32(wp.Coordinate.BearingTo(poi.Coordinate))
		}
		waypoints = append(waypoints, wp)
	}

	return mission.New(waypoints, pois.list, o.config)
}

// parseRecord decodes one row into a waypoint and its POI candidate, if
// any. The waypoint's POI index is left unset.
func parseRecord(record []string) (mission.Waypoint, *mission.POI, error) {
	if len(record) != RecordLength {
		return mission.Waypoint{}, nil, &mission.RecordLengthError{Got: len(record), Want: RecordLength}
	}
	p := fieldParser{record: record}

	wp := mission.NewWaypoint(mission.Coordinate{
		Lat: p.f64(colLatitude, "latitude"),
		Lon: p.f64(colLongitude, "longitude"),
	})
	wp.Altitude = p.f32(colAltitude, "altitude")
	wp.Heading = p.f32(colHeading, "heading")
	wp.CurveSize = p.f32(colCurveSize, "curvesize")
	wp.RotationDir = p.i32(colRotationDir, "rotationdir")
	gimbalMode := p.i32(colGimbalMode, "gimbalmode")
	wp.GimbalPitchAngle = p.i32(colGimbalPitchAngle, "gimbalpitchangle")
	altitudeMode := p.i16(colAltitudeMode, "altitudemode")
	wp.Speed = p.f32(colSpeed, "speed")
	poiLat := p.f64(colPOILatitude, "poi_latitude")
	poiLon := p.f64(colPOILongitude, "poi_longitude")
	poiAlt := p.f32(colPOIAltitude, "poi_altitude")
	poiAltitudeMode := p.i16(colPOIAltitudeMode, "poi_altitudemode")
	photoTime := p.f32(colPhotoTimeInterval, "photo_timeinterval")
	photoDistance := p.f32(colPhotoDistanceInterval, "photo_distinterval")
	if p.err != nil {
		return mission.Waypoint{}, nil, p.err
	}

	var err error
	if wp.GimbalMode, err = mission.GimbalPitchModeFromCode(gimbalMode); err != nil {
		return mission.Waypoint{}, nil, err
	}
	if wp.AltitudeMode, err = mission.AltitudeModeFromCode(altitudeMode); err != nil {
		return mission.Waypoint{}, nil, err
	}

	if wp.Actions, err = parseActions(record); err != nil {
		return mission.Waypoint{}, nil, err
	}

	switch {
	case photoTime > 0:
		wp.PhotoInterval = mission.TimeInterval(photoTime)
	case photoDistance > 0:
		wp.PhotoInterval = mission.DistanceInterval(photoDistance)
	}

	// The POI altitude mode is decoded even when the row has no POI.
	poiMode, err := mission.AltitudeModeFromCode(poiAltitudeMode)
	if err != nil {
		return mission.Waypoint{}, nil, err
	}
	if poiLat == 0 || poiLon == 0 || poiAlt == 0 {
		return wp, nil, nil
	}
	return wp, &mission.POI{
		Coordinate:   mission.Coordinate{Lat: poiLat, Lon: poiLon},
		Altitude:     poiAlt,
		AltitudeMode: poiMode,
	}, nil
}

func parseActions(record []string) ([]mission.Action, error) {
	var actions []mission.Action
	for slot := 0; slot < mission.MaxActions; slot++ {
		p := fieldParser{record: record}
		typ := p.i32(actionsOffset+slot*2, "actiontype")
		param := p.i32(actionsOffset+slot*2+1, "actionparam")
		if p.err != nil {
			return nil, p.err
		}

		var a mission.Action
		switch typ {
		case noAction:
			continue
		case 0:
			a = mission.StayFor(float32(param) / 1000)
		case 1:
			a = mission.TakePhoto()
		case 2:
			a = mission.StartRecording()
		case 3:
			a = mission.StopRecording()
		case 4:
			a = mission.RotateAircraft(param)
		case 5:
			a = mission.TiltCamera(param)
		default:
			return nil, &mission.ActionTypeError{Slot: slot, Type: typ}
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// poiSet collects POIs in discovery order, deduplicated by exact value.
type poiSet struct {
	list []mission.POI
}

// index returns the position of p, appending it if it was not seen before.
func (s *poiSet) index(p mission.POI) int {
	for i, q := range s.list {
		if q.Equal(p) {
			return i
		}
	}
	s.list = append(s.list, p)
	return len(s.list) - 1
}

// fieldParser parses typed fields and keeps the first error so a block of
// fields can be read before checking.
type fieldParser struct {
	record []string
	err    error
}

func (p *fieldParser) parse(col int, name string, bits int, float bool) (float64, int64) {
	if p.err != nil {
		return 0, 0
	}
	s := p.record[col]
	if float {
		v, err := strconv.ParseFloat(s, bits)
		// Out-of-range literals are well formed and saturate to ±Inf.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			p.err = &mission.ParseError{Field: col, Name: name, Value: s, Err: err}
		}
		return v, 0
	}
	v, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		p.err = &mission.ParseError{Field: col, Name: name, Value: s, Err: err}
	}
	return 0, v
}

func (p *fieldParser) f64(col int, name string) float64 {
	v, _ := p.parse(col, name, 64, true)
	return v
}

func (p *fieldParser) f32(col int, name string) float32 {
	v, _ := p.parse(col, name, 32, true)
	return float32(v)
}

func (p *fieldParser) i32(col int, name string) int32 {
	_, v := p.parse(col, name, 32, false)
	return int32(v)
}

func (p *fieldParser) i16(col int, name string) int16 {
	_, v := p.parse(col, name, 16, false)
	return int16(v)
}

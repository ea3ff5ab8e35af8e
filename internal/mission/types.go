package mission

import (
	"fmt"
	"math"
	"slices"
)

// MaxActions is the number of action slots a waypoint carries.
const MaxActions = 15

// NoPOI marks a waypoint that does not track a point of interest.
const NoPOI = -1

// ActionKind identifies an Action variant. The values are the wire codes.
type ActionKind int32

const (
	ActionStayFor ActionKind = iota
	ActionTakePhoto
	ActionStartRecording
	ActionStopRecording
	ActionRotateAircraft
	ActionTiltCamera
)

var actionKindNames = []string{"stay_for", "take_photo", "start_recording", "stop_recording", "rotate_aircraft", "tilt_camera"}

func (k ActionKind) String() string { return enumName(actionKindNames, int(k)) }

// Action is something the aircraft does when it reaches a waypoint.
// Seconds is only meaningful for StayFor, Param for RotateAircraft and
// TiltCamera.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Seconds float32    `json:"seconds,omitempty"`
	Param   int32      `json:"param,omitempty"`
}

func StayFor(seconds float32) Action  { return Action{Kind: ActionStayFor, Seconds: seconds} }
func TakePhoto() Action               { return Action{Kind: ActionTakePhoto} }
func StartRecording() Action          { return Action{Kind: ActionStartRecording} }
func StopRecording() Action           { return Action{Kind: ActionStopRecording} }
func RotateAircraft(deg int32) Action { return Action{Kind: ActionRotateAircraft, Param: deg} }
func TiltCamera(deg int32) Action     { return Action{Kind: ActionTiltCamera, Param: deg} }

// Code returns the (type, param) pair written to the mission file.
// StayFor is stored in milliseconds.
func (a Action) Code() (int32, int32) {
	switch a.Kind {
	case ActionStayFor:
		return int32(a.Kind), saturateInt32(math.Round(float64(a.Seconds) * 1000))
	case ActionRotateAircraft, ActionTiltCamera:
		return int32(a.Kind), a.Param
	default:
		return int32(a.Kind), 0
	}
}

// saturateInt32 clamps v into the int32 range, like a saturating cast.
func saturateInt32(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func (a Action) String() string {
	switch a.Kind {
	case ActionStayFor:
		return fmt.Sprintf("stay %gs", a.Seconds)
	case ActionRotateAircraft:
		return fmt.Sprintf("rotate %d°", a.Param)
	case ActionTiltCamera:
		return fmt.Sprintf("tilt %d°", a.Param)
	default:
		return a.Kind.String()
	}
}

// PhotoIntervalKind selects time- or distance-based photo capture.
type PhotoIntervalKind int

const (
	IntervalTime PhotoIntervalKind = iota
	IntervalDistance
)

// PhotoInterval triggers a photo every Value seconds (IntervalTime) or
// meters (IntervalDistance).
type PhotoInterval struct {
	Kind  PhotoIntervalKind `json:"kind"`
	Value float32           `json:"value"`
}

// TimeInterval returns a photo interval in seconds.
func TimeInterval(seconds float32) *PhotoInterval {
	return &PhotoInterval{Kind: IntervalTime, Value: seconds}
}

// DistanceInterval returns a photo interval in meters.
func DistanceInterval(meters float32) *PhotoInterval {
	return &PhotoInterval{Kind: IntervalDistance, Value: meters}
}

func (p *PhotoInterval) String() string {
	if p == nil {
		return "-"
	}
	if p.Kind == IntervalDistance {
		return fmt.Sprintf("every %gm", p.Value)
	}
	return fmt.Sprintf("every %gs", p.Value)
}

// POI is a ground location the aircraft or gimbal can track.
type POI struct {
	Coordinate   Coordinate   `json:"coordinate"`
	Altitude     float32      `json:"altitude"`
	AltitudeMode AltitudeMode `json:"altitude_mode"`
}

// Equal reports whether p and o are bit-for-bit identical. NaN equals a NaN
// with the same payload and 0 does not equal -0.
func (p POI) Equal(o POI) bool {
	return math.Float64bits(p.Coordinate.Lat) == math.Float64bits(o.Coordinate.Lat) &&
		math.Float64bits(p.Coordinate.Lon) == math.Float64bits(o.Coordinate.Lon) &&
		math.Float32bits(p.Altitude) == math.Float32bits(o.Altitude) &&
		p.AltitudeMode == o.AltitudeMode
}

// Waypoint is one point of the flight path.
type Waypoint struct {
	Coordinate       Coordinate      `json:"coordinate"`
	Altitude         float32         `json:"altitude"`
	Heading          float32         `json:"heading"` // degrees, nominally [-180, 180]
	CurveSize        float32         `json:"curve_size"`
	RotationDir      int32           `json:"rotation_dir"`
	GimbalMode       GimbalPitchMode `json:"gimbal_mode"`
	GimbalPitchAngle int32           `json:"gimbal_pitch_angle"`
	AltitudeMode     AltitudeMode    `json:"altitude_mode"`
	Speed            float32         `json:"speed"`
	POIIndex         int             `json:"poi_index"`
	Actions          []Action        `json:"actions,omitempty"`
	PhotoInterval    *PhotoInterval  `json:"photo_interval,omitempty"`
	TurnMode         int32           `json:"turn_mode"`
	StayTime         int16           `json:"stay_time"`
	MaxReachTime     int16           `json:"max_reach_time"`
	RepeatActions    int32           `json:"repeat_actions"`
}

// NewWaypoint returns a waypoint at c with the defaults the Litchi hub
// writes for CSV imports.
func NewWaypoint(c Coordinate) Waypoint {
	return Waypoint{
		Coordinate:    c,
		POIIndex:      NoPOI,
		TurnMode:      0,
		StayTime:      3,
		MaxReachTime:  0,
		RepeatActions: 1,
	}
}

// HasPOI reports whether the waypoint tracks a POI.
func (w Waypoint) HasPOI() bool { return w.POIIndex != NoPOI }

func (w Waypoint) clone() Waypoint {
	w.Actions = slices.Clone(w.Actions)
	if w.PhotoInterval != nil {
		pi := *w.PhotoInterval
		w.PhotoInterval = &pi
	}
	return w
}

// Config holds mission-wide settings.
type Config struct {
	HeadingMode   HeadingMode    `json:"heading_mode"`
	FinishAction  FinishAction   `json:"finish_action"`
	PathMode      PathMode       `json:"path_mode"`
	CruisingSpeed float32        `json:"cruising_speed"`
	RCSpeed       float32        `json:"rc_speed"`
	Repeat        int32          `json:"repeat"`
	Version       int16          `json:"version"`
	PhotoInterval *PhotoInterval `json:"photo_interval,omitempty"`
}

// DefaultConfig returns the configuration used for CSV imports.
func DefaultConfig() Config {
	return Config{
		HeadingMode:   HeadingManual,
		FinishAction:  FinishRTH,
		PathMode:      PathStraightLines,
		CruisingSpeed: 8,
		RCSpeed:       14,
		Repeat:        1,
		Version:       11,
	}
}

func (c Config) clone() Config {
	if c.PhotoInterval != nil {
		pi := *c.PhotoInterval
		c.PhotoInterval = &pi
	}
	return c
}

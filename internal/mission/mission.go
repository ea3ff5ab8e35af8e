// Validated mission aggregate
package mission

import "fmt"

// Mission is an ordered flight path, the POIs its waypoints reference and
// the mission-wide configuration. Build one with New.
type Mission struct {
	waypoints []Waypoint
	pois      []POI
	config    Config
}

// Validator inspects a candidate mission and reports problems. It is the
// hook for plausibility checks (coordinate bounds, speeds, angles) that
// New does not perform on its own.
type Validator func(waypoints []Waypoint, pois []POI, cfg Config) []string

// Option configures New.
type Option func(*options)

type options struct {
	validators []Validator
}

// WithValidators adds extra checks run after the referential ones.
func WithValidators(v ...Validator) Option {
	return func(o *options) { o.validators = append(o.validators, v...) }
}

// New builds a Mission, failing with an *InvalidMissionError when a
// waypoint references a POI that does not exist or carries more than
// MaxActions actions. New takes ownership of the slices.
func New(waypoints []Waypoint, pois []POI, cfg Config, opts ...Option) (*Mission, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var problems []string
	for i, wp := range waypoints {
		if wp.POIIndex != NoPOI && (wp.POIIndex < 0 || wp.POIIndex >= len(pois)) {
			problems = append(problems, fmt.Sprintf("waypoint %d references POI %d but mission has %d POIs", i, wp.POIIndex, len(pois)))
		}
		if len(wp.Actions) > MaxActions {
			problems = append(problems, fmt.Sprintf("waypoint %d has %d actions, at most %d allowed", i, len(wp.Actions), MaxActions))
		}
	}
	for _, v := range o.validators {
		problems = append(problems, v(waypoints, pois, cfg)...)
	}
	if len(problems) > 0 {
		return nil, &InvalidMissionError{Problems: problems}
	}

	return &Mission{waypoints: waypoints, pois: pois, config: cfg}, nil
}

// Waypoints returns a copy of the waypoints in flight order.
func (m *Mission) Waypoints() []Waypoint {
	out := make([]Waypoint, len(m.waypoints))
	for i, wp := range m.waypoints {
		out[i] = wp.clone()
	}
	return out
}

// POIs returns a copy of the POIs in discovery order.
func (m *Mission) POIs() []POI {
	out := make([]POI, len(m.pois))
	copy(out, m.pois)
	return out
}

// NumWaypoints returns the number of waypoints.
func (m *Mission) NumWaypoints() int { return len(m.waypoints) }

// NumActions returns the total number of actions across all waypoints.
func (m *Mission) NumActions() int {
	n := 0
	for i := range m.waypoints {
		n += len(m.waypoints[i].Actions)
	}
	return n
}

// NumPOIs returns the number of POIs.
func (m *Mission) NumPOIs() int { return len(m.pois) }

// Config returns a copy of the mission configuration.
func (m *Mission) Config() Config { return m.config.clone() }

// SetConfig replaces the mission configuration. It is the only mutation a
// Mission allows.
func (m *Mission) SetConfig(cfg Config) { m.config = cfg.clone() }

// Start returns the coordinate of the first waypoint, or the zero
// coordinate for an empty mission.
func (m *Mission) Start() Coordinate {
	if len(m.waypoints) == 0 {
		return Coordinate{}
	}
	return m.waypoints[0].Coordinate
}

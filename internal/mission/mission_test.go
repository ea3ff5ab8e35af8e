package mission

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewValidatesPOIIndex(t *testing.T) {
	pois := []POI{{Coordinate: Coordinate{Lat: 1, Lon: 2}, Altitude: 3}}

	cases := []struct {
		name    string
		index   int
		wantErr bool
	}{
		{"none", NoPOI, false},
		{"first", 0, false},
		{"past end", 1, true},
		{"negative", -2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wp := NewWaypoint(Coordinate{Lat: 10, Lon: 20})
			wp.POIIndex = tc.index
			_, err := New([]Waypoint{wp}, pois, DefaultConfig())
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidMission) {
					t.Fatalf("expected ErrInvalidMission, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
		})
	}
}

func TestNewReportsEveryProblem(t *testing.T) {
	a := NewWaypoint(Coordinate{})
	a.POIIndex = 3
	b := NewWaypoint(Coordinate{})
	for i := 0; i < MaxActions+1; i++ {
		b.Actions = append(b.Actions, TakePhoto())
	}
	_, err := New([]Waypoint{a, b}, nil, DefaultConfig())
	var ime *InvalidMissionError
	if !errors.As(err, &ime) {
		t.Fatalf("expected *InvalidMissionError, got %T", err)
	}
	if len(ime.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", ime.Problems)
	}
	if !strings.Contains(err.Error(), "waypoint 0 references POI 3") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestNewRunsExtraValidators(t *testing.T) {
	tooFast := func(wps []Waypoint, _ []POI, _ Config) []string {
		var out []string
		for _, wp := range wps {
			if wp.Speed > 15 {
				out = append(out, "too fast")
			}
		}
		return out
	}
	wp := NewWaypoint(Coordinate{})
	wp.Speed = 20
	if _, err := New([]Waypoint{wp}, nil, DefaultConfig()); err != nil {
		t.Fatalf("default New should not check speed: %v", err)
	}
	if _, err := New([]Waypoint{wp}, nil, DefaultConfig(), WithValidators(tooFast)); !errors.Is(err, ErrInvalidMission) {
		t.Fatalf("expected validator failure, got %v", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	wp := NewWaypoint(Coordinate{Lat: 1, Lon: 1})
	wp.Actions = []Action{TakePhoto()}
	wp.PhotoInterval = TimeInterval(2)
	m, err := New([]Waypoint{wp}, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := m.Waypoints()
	got[0].Actions[0] = StopRecording()
	got[0].PhotoInterval.Value = 99
	got[0].Altitude = 500

	again := m.Waypoints()
	if again[0].Actions[0].Kind != ActionTakePhoto || again[0].PhotoInterval.Value != 2 || again[0].Altitude != 0 {
		t.Fatalf("mission was mutated through accessor: %+v", again[0])
	}

	cfg := m.Config()
	cfg.CruisingSpeed = 1
	if m.Config().CruisingSpeed != 8 {
		t.Fatalf("config mutated through accessor")
	}
	m.SetConfig(cfg)
	if m.Config().CruisingSpeed != 1 {
		t.Fatalf("SetConfig did not apply")
	}
}

func TestDefaults(t *testing.T) {
	wp := NewWaypoint(Coordinate{})
	if wp.POIIndex != NoPOI || wp.StayTime != 3 || wp.RepeatActions != 1 || wp.TurnMode != 0 || wp.MaxReachTime != 0 {
		t.Errorf("unexpected waypoint defaults: %+v", wp)
	}
	cfg := DefaultConfig()
	if cfg.HeadingMode != HeadingManual || cfg.FinishAction != FinishRTH || cfg.PathMode != PathStraightLines {
		t.Errorf("unexpected config enums: %+v", cfg)
	}
	if cfg.CruisingSpeed != 8 || cfg.RCSpeed != 14 || cfg.Repeat != 1 || cfg.Version != 11 || cfg.PhotoInterval != nil {
		t.Errorf("unexpected config values: %+v", cfg)
	}
}

func TestNumActions(t *testing.T) {
	a := NewWaypoint(Coordinate{Lat: 1, Lon: 1})
	a.Actions = []Action{TakePhoto(), StayFor(2)}
	b := NewWaypoint(Coordinate{Lat: 2, Lon: 2})
	c := NewWaypoint(Coordinate{Lat: 3, Lon: 3})
	c.Actions = []Action{TiltCamera(-30)}

	m, err := New([]Waypoint{a, b, c}, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := m.NumActions(); got != 3 {
		t.Errorf("NumActions = %d, want 3", got)
	}
	empty, err := New(nil, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := empty.NumActions(); got != 0 {
		t.Errorf("NumActions of empty mission = %d", got)
	}
}

func TestActionCode(t *testing.T) {
	cases := []struct {
		a           Action
		code, param int32
	}{
		{StayFor(1.5), 0, 1500},
		{StayFor(float32(333) / 1000), 0, 333},
		{TakePhoto(), 1, 0},
		{StartRecording(), 2, 0},
		{StopRecording(), 3, 0},
		{RotateAircraft(-90), 4, -90},
		{TiltCamera(45), 5, 45},
		{StayFor(float32(math.MaxInt32) / 1000), 0, math.MaxInt32},
		{StayFor(-1e7), 0, math.MinInt32},
		{StayFor(float32(math.Inf(1))), 0, math.MaxInt32},
	}
	for _, tc := range cases {
		code, param := tc.a.Code()
		if code != tc.code || param != tc.param {
			t.Errorf("%v.Code() = (%d, %d), want (%d, %d)", tc.a, code, param, tc.code, tc.param)
		}
	}
}

func TestPOIEqualIsBitwise(t *testing.T) {
	p := POI{Coordinate: Coordinate{Lat: 1, Lon: 2}, Altitude: 3, AltitudeMode: AltitudeAboveGround}
	if !p.Equal(p) {
		t.Fatalf("POI not equal to itself")
	}
	q := p
	q.AltitudeMode = AltitudeAbsolute
	if p.Equal(q) {
		t.Errorf("altitude mode ignored")
	}
	q = p
	q.Coordinate.Lat = math.Nextafter(1, 2)
	if p.Equal(q) {
		t.Errorf("expected no epsilon tolerance")
	}
	n := POI{Coordinate: Coordinate{Lat: math.NaN(), Lon: 2}, Altitude: 3}
	if !n.Equal(n) {
		t.Errorf("identical NaN POIs should compare equal")
	}
}

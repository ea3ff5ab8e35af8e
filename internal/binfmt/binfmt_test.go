package binfmt

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/VolaTeQ/litchitool/internal/csvformat"
	"github.com/VolaTeQ/litchitool/internal/mission"
)

// cursor walks an encoded mission field by field.
type cursor struct {
	t   *testing.T
	b   []byte
	off int
}

func (c *cursor) next(n int) []byte {
	c.t.Helper()
	if c.off+n > len(c.b) {
		c.t.Fatalf("read %d bytes at offset %d past end (%d)", n, c.off, len(c.b))
	}
	out := c.b[c.off : c.off+n]
	c.off += n
	return out
}

func (c *cursor) i16() int16   { return int16(binary.BigEndian.Uint16(c.next(2))) }
func (c *cursor) i32() int32   { return int32(binary.BigEndian.Uint32(c.next(4))) }
func (c *cursor) f32() float32 { return math.Float32frombits(binary.BigEndian.Uint32(c.next(4))) }
func (c *cursor) f64() float64 { return math.Float64frombits(binary.BigEndian.Uint64(c.next(8))) }

func mustMission(t *testing.T, wps []mission.Waypoint, pois []mission.POI, cfg mission.Config) *mission.Mission {
	t.Helper()
	m, err := mission.New(wps, pois, cfg)
	if err != nil {
		t.Fatalf("mission.New: %v", err)
	}
	return m
}

func TestEncodeGolden(t *testing.T) {
	m, err := csvformat.ReadFile("testdata/litchi_mission.csv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want, err := os.ReadFile("testdata/litchi_mission.golden")
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}

	got := Encode(m)
	if !bytes.Equal(got, want) {
		for i := range got {
			if i >= len(want) || got[i] != want[i] {
				t.Fatalf("encoding differs from golden at byte %d (got %d bytes, want %d)", i, len(got), len(want))
			}
		}
		t.Fatalf("encoding is a prefix of golden: got %d bytes, want %d", len(got), len(want))
	}
	if !bytes.Equal(Encode(m), got) {
		t.Fatalf("encoding is not deterministic")
	}
}

func TestEncodeSingleWaypoint(t *testing.T) {
	wp := mission.NewWaypoint(mission.Coordinate{Lat: 10, Lon: 20})
	wp.Altitude = 5
	wp.Actions = []mission.Action{mission.TakePhoto()}
	m := mustMission(t, []mission.Waypoint{wp}, nil, mission.DefaultConfig())

	b := Encode(m)
	if len(b) != Size(m) {
		t.Fatalf("len(Encode) = %d, Size = %d", len(b), Size(m))
	}
	c := &cursor{t: t, b: b}

	if got := c.i32(); got != Magic {
		t.Fatalf("magic = %d", got)
	}
	if h, f, p := c.i32(), c.i32(), c.i32(); h != 2 || f != 1 || p != 0 {
		t.Errorf("modes = %d %d %d", h, f, p)
	}
	if cs, rc := c.f32(), c.f32(); cs != 8 || rc != 14 {
		t.Errorf("speeds = %f %f", cs, rc)
	}
	if rep := c.i32(); rep != 1 {
		t.Errorf("repeat = %d", rep)
	}
	if v := c.i16(); v != 11 {
		t.Errorf("version = %d", v)
	}
	if pad := c.next(10); !bytes.Equal(pad, make([]byte, 10)) {
		t.Errorf("padding = %x", pad)
	}

	if n := c.i32(); n != 1 {
		t.Fatalf("waypoint count = %d", n)
	}
	if alt := c.f32(); alt != 5 {
		t.Errorf("altitude = %f", alt)
	}
	if turn := c.i32(); turn != 0 {
		t.Errorf("turn mode = %d", turn)
	}
	c.f32() // heading
	c.f32() // speed
	if stay, reach := c.i16(), c.i16(); stay != 3 || reach != 0 {
		t.Errorf("stay/reach = %d %d", stay, reach)
	}
	if lat, lon := c.f64(), c.f64(); lat != 10 || lon != 20 {
		t.Errorf("coordinate = %f %f", lat, lon)
	}
	c.f32() // curve size
	c.i32() // gimbal mode
	c.i32() // gimbal pitch
	if n := c.i32(); n != 1 {
		t.Fatalf("action count = %d", n)
	}
	if rep := c.i32(); rep != 1 {
		t.Errorf("repeat actions = %d", rep)
	}
	if code, param := c.i32(), c.i32(); code != 1 || param != 0 {
		t.Errorf("action = (%d, %d), want (1, 0)", code, param)
	}

	if n := c.i32(); n != 0 {
		t.Fatalf("POI count = %d", n)
	}
	if mode, alt, poi := c.i16(), c.f32(), c.i32(); mode != 0 || alt != 5 || poi != -1 {
		t.Errorf("second pass = %d %f %d", mode, alt, poi)
	}
	if a, b2, z := c.i32(), c.i32(), c.i32(); a != 8 || b2 != 8 || z != 0 {
		t.Errorf("trailer = %d %d %d", a, b2, z)
	}
	for i := 0; i < 2; i++ {
		if x, y := c.f32(), c.f32(); x != -1 || y != -1 {
			t.Errorf("interval %d = (%f, %f)", i, x, y)
		}
	}
	if c.off != len(b) {
		t.Errorf("%d trailing bytes", len(b)-c.off)
	}
}

func TestEncodeClampsSpeedsAndForcesVersion(t *testing.T) {
	cases := []struct {
		cruise, rc         float32
		wantCruise, wantRC float32
	}{
		{100, 100, 15, 15},
		{-100, -100, -15, 2},
		{float32(math.Inf(1)), 0, 15, 2},
		{3, 9, 3, 9},
	}
	for _, tc := range cases {
		cfg := mission.DefaultConfig()
		cfg.CruisingSpeed = tc.cruise
		cfg.RCSpeed = tc.rc
		cfg.Version = 3
		c := &cursor{t: t, b: Encode(mustMission(t, nil, nil, cfg))}
		c.next(16)
		if cs, rc := c.f32(), c.f32(); cs != tc.wantCruise || rc != tc.wantRC {
			t.Errorf("clamp(%f, %f) = (%f, %f), want (%f, %f)", tc.cruise, tc.rc, cs, rc, tc.wantCruise, tc.wantRC)
		}
		c.i32()
		if v := c.i16(); v != Version {
			t.Errorf("version = %d, want %d", v, Version)
		}
	}
}

func TestEncodePhotoIntervals(t *testing.T) {
	cfg := mission.DefaultConfig()
	cfg.PhotoInterval = mission.DistanceInterval(50)
	a := mission.NewWaypoint(mission.Coordinate{Lat: 1, Lon: 1})
	b := mission.NewWaypoint(mission.Coordinate{Lat: 2, Lon: 2})
	m := mustMission(t, []mission.Waypoint{a, b}, nil, cfg)

	enc := Encode(m)
	c := &cursor{t: t, b: enc, off: len(enc) - 3*8}
	if x, y := c.f32(), c.f32(); x != -1 || y != 50 {
		t.Errorf("global interval = (%f, %f), want (-1, 50)", x, y)
	}
	for i := 0; i < 2; i++ {
		if x, y := c.f32(), c.f32(); x != -1 || y != -1 {
			t.Errorf("waypoint %d interval = (%f, %f), want (-1, -1)", i, x, y)
		}
	}

	b.PhotoInterval = mission.TimeInterval(2.5)
	m = mustMission(t, []mission.Waypoint{a, b}, nil, mission.DefaultConfig())
	enc = Encode(m)
	c = &cursor{t: t, b: enc, off: len(enc) - 8}
	if x, y := c.f32(), c.f32(); x != 2.5 || y != -1 {
		t.Errorf("time interval = (%f, %f), want (2.5, -1)", x, y)
	}
}

func TestEncodeSharedPOIIndex(t *testing.T) {
	poi := mission.POI{Coordinate: mission.Coordinate{Lat: 48.2, Lon: 16.4}, Altitude: 10, AltitudeMode: mission.AltitudeAboveGround}
	a := mission.NewWaypoint(mission.Coordinate{Lat: 48.1, Lon: 16.3})
	a.POIIndex = 0
	b := a
	m := mustMission(t, []mission.Waypoint{a, b}, []mission.POI{poi}, mission.DefaultConfig())

	enc := Encode(m)
	// Skip header, two bare waypoints and the POI pass.
	c := &cursor{t: t, b: enc, off: 40 + 4 + 2*56}
	if n := c.i32(); n != 1 {
		t.Fatalf("POI count = %d", n)
	}
	if lat, lon, alt := c.f64(), c.f64(), c.f32(); lat != 48.2 || lon != 16.4 || alt != 10 {
		t.Errorf("POI = %f %f %f", lat, lon, alt)
	}
	for i := 0; i < 2; i++ {
		c.i16()
		c.f32()
		if idx := c.i32(); idx != 0 {
			t.Errorf("waypoint %d POI index = %d, want 0", i, idx)
		}
	}
	if mode, alt := c.i16(), c.f32(); mode != 1 || alt != 10 {
		t.Errorf("POI altitude pass = %d %f", mode, alt)
	}
}

func TestWriteTo(t *testing.T) {
	m := mustMission(t, nil, nil, mission.DefaultConfig())
	var buf bytes.Buffer
	n, err := WriteTo(&buf, m)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if int(n) != Size(m) || !bytes.Equal(buf.Bytes(), Encode(m)) {
		t.Errorf("WriteTo wrote %d bytes, want %d", n, Size(m))
	}
}

func TestSizeCountsEveryAction(t *testing.T) {
	a := mission.NewWaypoint(mission.Coordinate{Lat: 1, Lon: 2})
	a.Actions = []mission.Action{mission.StayFor(1), mission.TakePhoto(), mission.RotateAircraft(90)}
	b := mission.NewWaypoint(mission.Coordinate{Lat: 3, Lon: 4})
	b.Actions = []mission.Action{mission.StartRecording()}
	m := mustMission(t, []mission.Waypoint{a, b}, nil, mission.DefaultConfig())

	if got, want := Size(m), len(Encode(m)); got != want {
		t.Fatalf("Size = %d, len(Encode) = %d", got, want)
	}
	single := mustMission(t, []mission.Waypoint{mission.NewWaypoint(mission.Coordinate{Lat: 1, Lon: 2})}, nil, mission.DefaultConfig())
	if diff := Size(m) - Size(single); diff != (56+10+8)+4*8 {
		t.Errorf("size difference = %d", diff)
	}
}

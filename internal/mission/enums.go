package mission

import (
	"fmt"
	"strings"
)

// HeadingMode controls how the aircraft yaws between waypoints.
type HeadingMode int32

const (
	HeadingAuto HeadingMode = iota
	HeadingInitial
	HeadingManual
	HeadingCustom
)

var headingModeNames = []string{"auto", "initial", "manual", "custom"}

// HeadingModeFromCode decodes a wire code.
func HeadingModeFromCode(code int32) (HeadingMode, error) {
	if code < 0 || int(code) >= len(headingModeNames) {
		return 0, &EnumError{Enum: "HeadingMode", Value: int64(code)}
	}
	return HeadingMode(code), nil
}

// ParseHeadingMode decodes a configuration name such as "manual".
func ParseHeadingMode(s string) (HeadingMode, error) {
	i, err := parseName("HeadingMode", headingModeNames, s)
	return HeadingMode(i), err
}

func (h HeadingMode) String() string { return enumName(headingModeNames, int(h)) }

// FinishAction is what the aircraft does after the last waypoint.
type FinishAction int32

const (
	FinishNone FinishAction = iota
	FinishRTH
	FinishLand
	FinishBackToFirst
	FinishReverse
)

var finishActionNames = []string{"none", "rth", "land", "back_to_first", "reverse"}

// FinishActionFromCode decodes a wire code.
func FinishActionFromCode(code int32) (FinishAction, error) {
	if code < 0 || int(code) >= len(finishActionNames) {
		return 0, &EnumError{Enum: "FinishAction", Value: int64(code)}
	}
	return FinishAction(code), nil
}

// ParseFinishAction decodes a configuration name such as "rth".
func ParseFinishAction(s string) (FinishAction, error) {
	i, err := parseName("FinishAction", finishActionNames, s)
	return FinishAction(i), err
}

func (f FinishAction) String() string { return enumName(finishActionNames, int(f)) }

// PathMode selects straight segments or curved turns through waypoints.
type PathMode int32

const (
	PathStraightLines PathMode = iota
	PathCurvedTurns
)

var pathModeNames = []string{"straight_lines", "curved_turns"}

// PathModeFromCode decodes a wire code.
func PathModeFromCode(code int32) (PathMode, error) {
	if code < 0 || int(code) >= len(pathModeNames) {
		return 0, &EnumError{Enum: "PathMode", Value: int64(code)}
	}
	return PathMode(code), nil
}

// ParsePathMode decodes a configuration name such as "curved_turns".
func ParsePathMode(s string) (PathMode, error) {
	i, err := parseName("PathMode", pathModeNames, s)
	return PathMode(i), err
}

func (p PathMode) String() string { return enumName(pathModeNames, int(p)) }

// GimbalPitchMode controls the gimbal between waypoints.
type GimbalPitchMode int32

const (
	GimbalDisabled GimbalPitchMode = iota
	GimbalFocusPOI
	GimbalInterpolate
)

var gimbalPitchModeNames = []string{"disabled", "focus_poi", "interpolate"}

// GimbalPitchModeFromCode decodes a wire code.
func GimbalPitchModeFromCode(code int32) (GimbalPitchMode, error) {
	if code < 0 || int(code) >= len(gimbalPitchModeNames) {
		return 0, &EnumError{Enum: "GimbalPitchMode", Value: int64(code)}
	}
	return GimbalPitchMode(code), nil
}

func (g GimbalPitchMode) String() string { return enumName(gimbalPitchModeNames, int(g)) }

// AltitudeMode says what an altitude is measured against. It is a 16-bit
// code on the wire.
type AltitudeMode int16

const (
	AltitudeAbsolute AltitudeMode = iota
	AltitudeAboveGround
)

var altitudeModeNames = []string{"absolute", "above_ground"}

// AltitudeModeFromCode decodes a wire code.
func AltitudeModeFromCode(code int16) (AltitudeMode, error) {
	if code < 0 || int(code) >= len(altitudeModeNames) {
		return 0, &EnumError{Enum: "AltitudeMode", Value: int64(code)}
	}
	return AltitudeMode(code), nil
}

func (a AltitudeMode) String() string { return enumName(altitudeModeNames, int(a)) }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseName(enum string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: unknown name %q (want one of %s)", enum, s, strings.Join(names, ", "))
}

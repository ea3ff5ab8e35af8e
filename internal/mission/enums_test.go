package mission

import (
	"errors"
	"testing"
)

func TestEnumFromCode(t *testing.T) {
	if g, err := GimbalPitchModeFromCode(2); err != nil || g != GimbalInterpolate {
		t.Fatalf("GimbalPitchModeFromCode(2) = %v, %v", g, err)
	}
	if a, err := AltitudeModeFromCode(1); err != nil || a != AltitudeAboveGround {
		t.Fatalf("AltitudeModeFromCode(1) = %v, %v", a, err)
	}

	_, err := GimbalPitchModeFromCode(3)
	var ee *EnumError
	if !errors.As(err, &ee) || ee.Value != 3 || ee.Enum != "GimbalPitchMode" {
		t.Fatalf("expected EnumError for 3, got %v", err)
	}
	if !errors.Is(err, ErrFormat) {
		t.Errorf("EnumError should classify as ErrFormat")
	}
	if _, err := AltitudeModeFromCode(-1); err == nil {
		t.Errorf("expected error for -1")
	}
	if _, err := FinishActionFromCode(5); err == nil {
		t.Errorf("expected error for finish action 5")
	}
	if _, err := HeadingModeFromCode(4); err == nil {
		t.Errorf("expected error for heading mode 4")
	}
	if _, err := PathModeFromCode(2); err == nil {
		t.Errorf("expected error for path mode 2")
	}
}

func TestParseNames(t *testing.T) {
	if h, err := ParseHeadingMode("Custom"); err != nil || h != HeadingCustom {
		t.Errorf("ParseHeadingMode = %v, %v", h, err)
	}
	if f, err := ParseFinishAction("back_to_first"); err != nil || f != FinishBackToFirst {
		t.Errorf("ParseFinishAction = %v, %v", f, err)
	}
	if p, err := ParsePathMode("curved_turns"); err != nil || p != PathCurvedTurns {
		t.Errorf("ParsePathMode = %v, %v", p, err)
	}
	if _, err := ParseFinishAction("hover"); err == nil {
		t.Errorf("expected error for unknown name")
	}
	if HeadingManual.String() != "manual" || FinishRTH.String() != "rth" {
		t.Errorf("unexpected String output")
	}
}

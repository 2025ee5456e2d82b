package controller_test

import (
	"testing"
)

func TestSetFade_OnlyZeroOrOne(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	if !ctrl.SetFade(1) {
		t.Fatal("SetFade(1) rejected")
	}
	if ctrl.SetFade(2) {
		t.Error("SetFade(2) accepted")
	}
	if !ctrl.Tunables().Fade {
		t.Error("rejected SetFade changed prior state")
	}
	if got := ctrl.DescribeFade(); got != "1 - LED fading is enabled" {
		t.Errorf("DescribeFade = %q", got)
	}
}

func TestSetIntensity_Range(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	tests := []struct {
		v    int
		ok   bool
		want uint8
	}{
		{0, true, 0},
		{255, true, 255},
		{256, false, 255},
		{-1, false, 255},
		{12, true, 12},
	}
	for _, tt := range tests {
		if got := ctrl.SetIntensity(tt.v); got != tt.ok {
			t.Errorf("SetIntensity(%d) = %v, want %v", tt.v, got, tt.ok)
		}
		if got := ctrl.Tunables().Intensity; got != tt.want {
			t.Errorf("after SetIntensity(%d) intensity = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSetSpeed_Range(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	if ctrl.SetSpeed(16) {
		t.Error("SetSpeed(16) accepted")
	}
	if !ctrl.SetSpeed(0) {
		t.Error("SetSpeed(0) rejected")
	}
	if got := ctrl.DescribeSpeed(); got != "0 - LED slopes disabled, continuous light" {
		t.Errorf("DescribeSpeed = %q", got)
	}
	ctrl.SetSpeed(3)
	if got := ctrl.DescribeSpeed(); got != "3 - LED blinking/fading speed" {
		t.Errorf("DescribeSpeed = %q", got)
	}
}

func TestSetFadeParams_Clamps(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.SetFadeParams(-1, 9, 3, 5)
	if got := ctrl.Tunables().Slopes; got != [4]uint8{0, 5, 3, 5} {
		t.Errorf("Slopes = %v, want [0 5 3 5]", got)
	}
	if got := ctrl.DescribeSlope(); got != "Slope up : (0,5) - Slope down (3,5)" {
		t.Errorf("DescribeSlope = %q", got)
	}
}

func TestSetLowPower(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	if !ctrl.SetLowPower(1) || !ctrl.Tunables().LowPower {
		t.Error("SetLowPower(1) did not enable low power")
	}
	if !ctrl.SetLowPower(7) || ctrl.Tunables().LowPower {
		t.Error("SetLowPower(7) should be accepted and mean off")
	}
	if ctrl.SetLowPower(300) {
		t.Error("SetLowPower(300) accepted")
	}
	if got := ctrl.DescribeLowPower(); got != "0" {
		t.Errorf("DescribeLowPower = %q", got)
	}
}

func TestSetPatternsDisabled_OnlyZeroOrOne(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.SetPatternsDisabled(1)
	if ctrl.SetPatternsDisabled(3) {
		t.Error("SetPatternsDisabled(3) accepted")
	}
	if !ctrl.Tunables().PatternsDisabled {
		t.Error("rejected value changed prior state")
	}
	if got := ctrl.DescribePatternsDisabled(); got != "1" {
		t.Errorf("DescribePatternsDisabled = %q", got)
	}
}

func TestDescribeIntensity(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	tests := []struct {
		v    int
		want string
	}{
		{0, "0 - LED intensity passthrough"},
		{40, "40 - LED intensity at reference"},
		{30, "30 - LED intensity darker by 10 steps"},
		{100, "100 - LED intensity brighter by 60 steps"},
	}
	for _, tt := range tests {
		ctrl.SetIntensity(tt.v)
		if got := ctrl.DescribeIntensity(); got != tt.want {
			t.Errorf("DescribeIntensity(%d) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

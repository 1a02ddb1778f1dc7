package utils

import (
	"math"
	"testing"
	"time"
)

func TestParseGTFSTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00:00", want: 0},
		{name: "morning departure", input: "06:32:00", want: 6*3600 + 32*60},
		{name: "past midnight", input: "25:01:30", want: 25*3600 + 60 + 30},
		{name: "hour minute only", input: "7:45", want: 7*3600 + 45*60},
		{name: "minutes out of range", input: "06:61:00", wantErr: true},
		{name: "garbage", input: "six thirty", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGTFSTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGTFSTime(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestIso8601FromUnixSeconds(t *testing.T) {
	if got := Iso8601FromUnixSeconds(1762840800); got != "2025-11-11T06:00:00Z" {
		t.Errorf("expected 2025-11-11T06:00:00Z, got %s", got)
	}
}

func TestClockString(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	// 2025-11-11 06:30:00 JST
	ts := time.Date(2025, 11, 11, 6, 30, 0, 0, tokyo).Unix()
	if got := ClockString(ts, tokyo); got != "06:30:00" {
		t.Errorf("expected 06:30:00, got %s", got)
	}
	if got := ClockString(0, nil); got != "00:00:00" {
		t.Errorf("expected UTC fallback 00:00:00, got %s", got)
	}
}

func TestGroundDistanceMeters(t *testing.T) {
	// One degree of latitude near Toyama.
	d := GroundDistanceMeters(36.0, 137.2, 37.0, 137.2)
	if math.Abs(d-MetersPerDegreeLat) > 1 {
		t.Errorf("expected ~%.0f m, got %.1f", MetersPerDegreeLat, d)
	}

	// One degree of longitude shrinks with cos(lat).
	d = GroundDistanceMeters(36.7, 137.0, 36.7, 138.0)
	want := MetersPerDegreeLonEquator * math.Cos(36.7*math.Pi/180)
	if math.Abs(d-want) > 1 {
		t.Errorf("expected ~%.0f m, got %.1f", want, d)
	}

	if d := GroundDistanceMeters(36.7, 137.2, 36.7, 137.2); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

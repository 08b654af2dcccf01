package utils

import (
	"testing"
	"time"
)

func TestTotalCost(t *testing.T) {
	tests := []struct {
		rate     float64
		duration int
		want     float64
	}{
		{100000, 90, 150000},
		{120000, 60, 120000},
		{120000, 30, 60000},
		{150000, 120, 300000},
	}

	for _, tt := range tests {
		if got := TotalCost(tt.rate, tt.duration); got != tt.want {
			t.Errorf("TotalCost(%v, %d) = %v, want %v", tt.rate, tt.duration, got, tt.want)
		}
	}
}

func TestIsAllowedDuration(t *testing.T) {
	for _, d := range []int{30, 60, 90, 120} {
		if !IsAllowedDuration(d) {
			t.Errorf("duration %d should be allowed", d)
		}
	}
	for _, d := range []int{0, 15, 45, 150} {
		if IsAllowedDuration(d) {
			t.Errorf("duration %d should be rejected", d)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		payment string
		wantErr bool
	}{
		{"start paid consultation", "scheduled", "ongoing", "confirmed", false},
		{"start unpaid consultation", "scheduled", "ongoing", "pending", true},
		{"complete ongoing", "ongoing", "completed", "confirmed", false},
		{"complete scheduled directly", "scheduled", "completed", "confirmed", true},
		{"restart completed", "completed", "ongoing", "confirmed", true},
		{"complete completed", "completed", "completed", "confirmed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.payment)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanTransition(%q, %q, %q) error = %v, wantErr %v",
					tt.from, tt.to, tt.payment, err, tt.wantErr)
			}
		})
	}
}

func TestCanReview(t *testing.T) {
	rating := 5
	if err := CanReview("completed", nil); err != nil {
		t.Errorf("first review on completed consultation should pass: %v", err)
	}
	if err := CanReview("completed", &rating); err == nil {
		t.Error("second review should be rejected")
	}
	if err := CanReview("ongoing", nil); err == nil {
		t.Error("review before completion should be rejected")
	}
}

func TestRecomputedDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		ended time.Time
		want  int
	}{
		{"exactly 25 minutes", start.Add(25 * time.Minute), 25},
		{"rounds up partial minute", start.Add(25*time.Minute + 10*time.Second), 26},
		{"zero length", start, 0},
		{"clock skew", start.Add(-time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecomputedDuration(start, tt.ended); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTimesOverlap(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	tests := []struct {
		name string
		aS, aE, bS, bE int
		want bool
	}{
		{"disjoint", 0, 30, 30, 60, false},
		{"contained", 0, 60, 15, 30, true},
		{"partial", 0, 45, 30, 90, true},
		{"identical", 0, 30, 0, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimesOverlap(at(tt.aS), at(tt.aE), at(tt.bS), at(tt.bE))
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClockOverlap(t *testing.T) {
	if !ClockOverlap("09:00:00", "12:00:00", "11:00:00", "13:00:00") {
		t.Error("expected overlap")
	}
	if ClockOverlap("09:00:00", "12:00:00", "12:00:00", "13:00:00") {
		t.Error("adjacent windows should not overlap")
	}
	// Request values arrive as HH:MM while stored windows read back as HH:MM:SS
	if ClockOverlap("10:00", "11:00", "09:00:00", "10:00:00") {
		t.Error("window starting exactly where another ends should not overlap")
	}
	if !ClockOverlap("09:30", "10:30", "09:00:00", "10:00:00") {
		t.Error("expected overlap across mixed clock formats")
	}
}

func TestNormalizeClock(t *testing.T) {
	if got := NormalizeClock("09:30"); got != "09:30:00" {
		t.Errorf("NormalizeClock(09:30) = %q", got)
	}
	if got := NormalizeClock("09:30:15"); got != "09:30:15" {
		t.Errorf("NormalizeClock(09:30:15) = %q", got)
	}
}

func TestParseBookingTime(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	got, err := ParseBookingTime("2026-03-01", "09:30", jakarta)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	want := time.Date(2026, 3, 1, 9, 30, 0, 0, jakarta)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	// Weekday must come out in the booking timezone, not UTC
	if got.Weekday() != time.Sunday {
		t.Errorf("weekday = %v, want Sunday", got.Weekday())
	}

	if _, err := ParseBookingTime("2026-03-01", "9am", jakarta); err == nil {
		t.Error("malformed clock should be rejected")
	}
}

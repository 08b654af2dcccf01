package utils

import (
	"testing"
	"time"
)

func TestDayIndexPregnant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for month := 1; month <= 9; month++ {
		m := month
		got := DayIndex("pregnant", &m, nil, now)
		want := month * 30
		if got != want {
			t.Errorf("month %d: got day %d, want %d", month, got, want)
		}
	}
}

func TestDayIndexHasChild(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"born today", now, 270},
		{"born 95 days ago", now.AddDate(0, 0, -95), 365},
		{"born 96 days ago", now.AddDate(0, 0, -96), 366},
		{"born a year ago", now.AddDate(-1, 0, 0), 270 + 365},
		{"born long ago, clamps to 1000", now.AddDate(-3, 0, 0), 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birth := tt.birth
			got := DayIndex("has_child", nil, &birth, now)
			if got != tt.want {
				t.Errorf("got day %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayIndexDefaults(t *testing.T) {
	now := time.Now()
	if got := DayIndex("", nil, nil, now); got != 1 {
		t.Errorf("missing status: got %d, want 1", got)
	}
	if got := DayIndex("pregnant", nil, nil, now); got != 1 {
		t.Errorf("pregnant without month: got %d, want 1", got)
	}
	if got := DayIndex("has_child", nil, nil, now); got != 1 {
		t.Errorf("has_child without birth date: got %d, want 1", got)
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, PhasePregnancy},
		{270, PhasePregnancy},
		{271, PhaseInfant0To3},
		{365, PhaseInfant0To3},
		{366, PhaseInfant3To12},
		{635, PhaseInfant3To12},
		{636, PhaseToddler},
		{1000, PhaseToddler},
	}

	for _, tt := range tests {
		if got := PhaseFor(tt.day); got != tt.want {
			t.Errorf("day %d: got %q, want %q", tt.day, got, tt.want)
		}
	}
}

package utils

import (
	"errors"
	"math"
	"time"
)

// Allowed booking durations in minutes.
var allowedDurations = map[int]bool{30: true, 60: true, 90: true, 120: true}

// MaxDurationMinutes is the longest bookable consultation. Overlap candidate
// queries use it to bound how far back an earlier booking can still reach.
const MaxDurationMinutes = 120

func IsAllowedDuration(minutes int) bool {
	return allowedDurations[minutes]
}

// ParseBookingTime interprets a YYYY-MM-DD date and HH:MM clock in the
// service's booking timezone. Doctors publish weekly schedules as local wall
// clock, so the weekday and window checks must run in the same location.
func ParseBookingTime(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
}

// TotalCost computes the consultation price from the doctor's hourly rate
// snapshot, rounded to the nearest whole amount.
func TotalCost(hourlyRate float64, durationMinutes int) float64 {
	return math.Round(hourlyRate / 60 * float64(durationMinutes))
}

// CanTransition reports whether a consultation may move between lifecycle
// statuses. Starting a consultation additionally requires confirmed payment.
func CanTransition(from, to, paymentStatus string) error {
	switch {
	case from == "scheduled" && to == "ongoing":
		if paymentStatus != "confirmed" {
			return errors.New("payment must be confirmed before the consultation can start")
		}
		return nil
	case from == "ongoing" && to == "completed":
		return nil
	default:
		return errors.New("cannot transition consultation from " + from + " to " + to)
	}
}

// CanReview reports whether a rating may be recorded. Reviews are one-shot:
// a consultation that already carries a rating rejects a second submission.
func CanReview(status string, existingRating *int) error {
	if status != "completed" {
		return errors.New("only completed consultations can be reviewed")
	}
	if existingRating != nil {
		return errors.New("consultation has already been reviewed")
	}
	return nil
}

// RecomputedDuration returns the actual session length in minutes, rounded up.
func RecomputedDuration(startedAt, endedAt time.Time) int {
	seconds := endedAt.Sub(startedAt).Seconds()
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds / 60))
}

// TimesOverlap reports whether two half-open time windows intersect.
// Used for both weekly schedule windows and concrete consultation slots.
func TimesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ClockOverlap compares two clock windows on the same weekday. Inputs are
// normalized so HH:MM request values compare correctly against HH:MM:SS
// values read back from the database.
func ClockOverlap(aStart, aEnd, bStart, bEnd string) bool {
	aStart, aEnd = NormalizeClock(aStart), NormalizeClock(aEnd)
	bStart, bEnd = NormalizeClock(bStart), NormalizeClock(bEnd)
	return aStart < bEnd && bStart < aEnd
}

// NormalizeClock pads an HH:MM value to HH:MM:SS.
func NormalizeClock(clock string) string {
	if len(clock) == 5 {
		return clock + ":00"
	}
	return clock
}

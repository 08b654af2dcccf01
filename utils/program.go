package utils

import (
	"math"
	"time"
)

// Program phases over the 1000-day window.
const (
	PhasePregnancy  = "pregnancy"
	PhaseInfant0To3 = "infant_0_3"
	PhaseInfant3To12 = "infant_3_12"
	PhaseToddler    = "toddler"
)

const (
	MinDay = 1
	MaxDay = 1000

	// pregnancyDays models a completed pregnancy when the child is born.
	pregnancyDays = 270
)

// DayIndex maps the onboarding status to a day in the 1000-day program.
// A pregnancy month approximates to 30 days, no calendar precision.
// Missing or unknown input defaults to day 1.
func DayIndex(status string, pregnancyMonth *int, childBirthDate *time.Time, now time.Time) int {
	switch status {
	case "pregnant":
		if pregnancyMonth == nil {
			return MinDay
		}
		return clampDay(*pregnancyMonth * 30)
	case "has_child":
		if childBirthDate == nil {
			return MinDay
		}
		days := int(math.Ceil(now.Sub(*childBirthDate).Hours() / 24))
		return clampDay(pregnancyDays + days)
	default:
		return MinDay
	}
}

// PhaseFor buckets a day index into one of the four developmental phases.
func PhaseFor(day int) string {
	day = clampDay(day)
	switch {
	case day <= 270:
		return PhasePregnancy
	case day <= 365:
		return PhaseInfant0To3
	case day <= 635:
		return PhaseInfant3To12
	default:
		return PhaseToddler
	}
}

func clampDay(day int) int {
	if day < MinDay {
		return MinDay
	}
	if day > MaxDay {
		return MaxDay
	}
	return day
}

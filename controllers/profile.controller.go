package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/utils"
)

type OnboardingInput struct {
	Status         string  `json:"status" binding:"required,oneof=pregnant has_child"`
	PregnancyMonth *int    `json:"pregnancy_month" binding:"omitempty,min=1,max=9"`
	ChildBirthDate *string `json:"child_birth_date"`
}

func UpdateOnboarding(c *gin.Context) {
	userID := c.GetString("user_id")

	var input OnboardingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var birthDate *time.Time
	switch input.Status {
	case "pregnant":
		if input.PregnancyMonth == nil {
			security.SendValidationError(c, "Missing pregnancy month", "pregnancy_month is required when status is pregnant")
			return
		}
	case "has_child":
		if input.ChildBirthDate == nil || *input.ChildBirthDate == "" {
			security.SendValidationError(c, "Missing child birth date", "child_birth_date is required when status is has_child")
			return
		}
		parsed, err := time.Parse("2006-01-02", *input.ChildBirthDate)
		if err != nil {
			security.SendValidationError(c, "Invalid child birth date format", "Use YYYY-MM-DD format")
			return
		}
		if parsed.After(time.Now()) {
			security.SendValidationError(c, "Invalid child birth date", "Birth date cannot be in the future")
			return
		}
		birthDate = &parsed
	}

	result, err := config.DB.Exec(`
		UPDATE profiles
		SET status = $1, pregnancy_month = $2, child_birth_date = $3, onboarded = true, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $4
	`, input.Status, input.PregnancyMonth, birthDate, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update onboarding")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Onboarding updated successfully"})
}

// GetProgramToday computes the caller's position in the 1000-day program.
func GetProgramToday(c *gin.Context) {
	userID := c.GetString("user_id")

	var status *string
	var pregnancyMonth *int
	var childBirthDate *time.Time
	err := config.DB.QueryRow(`
		SELECT status, pregnancy_month, child_birth_date FROM profiles WHERE user_id = $1
	`, userID).Scan(&status, &pregnancyMonth, &childBirthDate)
	if err != nil {
		security.SendNotFoundError(c, "profile")
		return
	}

	statusStr := ""
	if status != nil {
		statusStr = *status
	}

	day := utils.DayIndex(statusStr, pregnancyMonth, childBirthDate, time.Now())
	phase := utils.PhaseFor(day)

	c.JSON(http.StatusOK, gin.H{
		"day":   day,
		"phase": phase,
	})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/utils"
)

// Doctor Schedule Controllers
type CreateScheduleInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// doctorIDForUser resolves the doctor row owned by the authenticated user.
func doctorIDForUser(userID string) (string, error) {
	var doctorID string
	err := config.DB.QueryRow(`SELECT id FROM doctors WHERE user_id = $1`, userID).Scan(&doctorID)
	return doctorID, err
}

// scheduleOverlaps compares a candidate window against the doctor's active
// windows on the same weekday. excludeID skips the row being updated.
func scheduleOverlaps(doctorID string, dayOfWeek int, excludeID, startTime, endTime string) (bool, error) {
	rows, err := config.DB.Query(`
		SELECT id, start_time, end_time FROM doctor_schedules
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_active = true
	`, doctorID, dayOfWeek)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, existingStart, existingEnd string
		if err := rows.Scan(&id, &existingStart, &existingEnd); err != nil {
			return false, err
		}
		if id == excludeID {
			continue
		}
		if utils.ClockOverlap(startTime, endTime, existingStart, existingEnd) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func CreateMySchedule(c *gin.Context) {
	userID := c.GetString("user_id")

	var input CreateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if utils.NormalizeClock(input.StartTime) >= utils.NormalizeClock(input.EndTime) {
		security.SendValidationError(c, "Invalid time window", "start_time must be before end_time")
		return
	}

	doctorID, err := doctorIDForUser(userID)
	if err != nil {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	// Reject overlap with an existing active window on the same weekday
	overlapping, err := scheduleOverlaps(doctorID, input.DayOfWeek, "", input.StartTime, input.EndTime)
	if err != nil {
		security.SendDatabaseError(c, "Failed to check schedule overlap")
		return
	}
	if overlapping {
		security.SendConflictError(c, "Schedule overlaps with an existing schedule")
		return
	}

	var schedule models.DoctorSchedule
	err = config.DB.QueryRow(`
		INSERT INTO doctor_schedules (doctor_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, doctor_id, day_of_week, start_time, end_time, is_active, created_at
	`, doctorID, input.DayOfWeek, input.StartTime, input.EndTime).Scan(
		&schedule.ID, &schedule.DoctorID, &schedule.DayOfWeek, &schedule.StartTime,
		&schedule.EndTime, &schedule.IsActive, &schedule.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create doctor schedule")
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func GetMySchedules(c *gin.Context) {
	userID := c.GetString("user_id")

	doctorID, err := doctorIDForUser(userID)
	if err != nil {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	listSchedules(c, doctorID)
}

// GetDoctorSchedules is the public view used by the booking page.
func GetDoctorSchedules(c *gin.Context) {
	doctorID := c.Param("id")

	var exists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM doctors WHERE id = $1 AND is_verified = true)`, doctorID).Scan(&exists)
	if err != nil || !exists {
		security.SendNotFoundError(c, "doctor")
		return
	}

	listSchedules(c, doctorID)
}

func listSchedules(c *gin.Context, doctorID string) {
	rows, err := config.DB.Query(`
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active, created_at
		FROM doctor_schedules WHERE doctor_id = $1 ORDER BY day_of_week, start_time
	`, doctorID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctor schedules")
		return
	}
	defer rows.Close()

	schedules := []models.DoctorSchedule{}
	for rows.Next() {
		var schedule models.DoctorSchedule
		err := rows.Scan(&schedule.ID, &schedule.DoctorID, &schedule.DayOfWeek, &schedule.StartTime,
			&schedule.EndTime, &schedule.IsActive, &schedule.CreatedAt)
		if err != nil {
			continue
		}
		schedules = append(schedules, schedule)
	}

	c.JSON(http.StatusOK, schedules)
}

type UpdateScheduleInput struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  *bool   `json:"is_active"`
}

func UpdateMySchedule(c *gin.Context) {
	userID := c.GetString("user_id")
	scheduleID := c.Param("id")

	var input UpdateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	doctorID, err := doctorIDForUser(userID)
	if err != nil {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	// Load the current window to validate the merged result against overlaps
	var current models.DoctorSchedule
	err = config.DB.QueryRow(`
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active
		FROM doctor_schedules WHERE id = $1 AND doctor_id = $2
	`, scheduleID, doctorID).Scan(&current.ID, &current.DoctorID, &current.DayOfWeek,
		&current.StartTime, &current.EndTime, &current.IsActive)
	if err != nil {
		security.SendNotFoundError(c, "doctor schedule")
		return
	}

	dayOfWeek := current.DayOfWeek
	if input.DayOfWeek != nil {
		dayOfWeek = *input.DayOfWeek
	}
	startTime := current.StartTime
	if input.StartTime != nil {
		startTime = *input.StartTime
	}
	endTime := current.EndTime
	if input.EndTime != nil {
		endTime = *input.EndTime
	}

	// The stored window reads back as HH:MM:SS while the request may carry
	// HH:MM, so the merged comparison runs on normalized values
	if utils.NormalizeClock(startTime) >= utils.NormalizeClock(endTime) {
		security.SendValidationError(c, "Invalid time window", "start_time must be before end_time")
		return
	}

	overlapping, err := scheduleOverlaps(doctorID, dayOfWeek, scheduleID, startTime, endTime)
	if err != nil {
		security.SendDatabaseError(c, "Failed to check schedule overlap")
		return
	}
	if overlapping {
		security.SendConflictError(c, "Schedule overlaps with an existing schedule")
		return
	}

	// Build dynamic update query
	query := "UPDATE doctor_schedules SET "
	args := []interface{}{}
	argIndex := 1

	if input.DayOfWeek != nil {
		query += "day_of_week = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.DayOfWeek)
		argIndex++
	}
	if input.StartTime != nil {
		query += "start_time = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.StartTime)
		argIndex++
	}
	if input.EndTime != nil {
		query += "end_time = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.EndTime)
		argIndex++
	}
	if input.IsActive != nil {
		query += "is_active = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.IsActive)
		argIndex++
	}

	if len(args) == 0 {
		security.SendValidationError(c, "No fields to update", nil)
		return
	}

	query = query[:len(query)-2] + " WHERE id = $" + strconv.Itoa(argIndex) + " AND doctor_id = $" + strconv.Itoa(argIndex+1)
	args = append(args, scheduleID, doctorID)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update doctor schedule")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "doctor schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Doctor schedule updated successfully"})
}

func DeleteMySchedule(c *gin.Context) {
	userID := c.GetString("user_id")
	scheduleID := c.Param("id")

	doctorID, err := doctorIDForUser(userID)
	if err != nil {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	result, err := config.DB.Exec(`DELETE FROM doctor_schedules WHERE id = $1 AND doctor_id = $2`, scheduleID, doctorID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete doctor schedule")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "doctor schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Doctor schedule deleted successfully"})
}

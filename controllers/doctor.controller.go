package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
)

type ApplyAsDoctorInput struct {
	Specialization string  `json:"specialization" binding:"required,max=100"`
	LicenseNumber  string  `json:"license_number" binding:"required,max=50"`
	HourlyRate     float64 `json:"hourly_rate" binding:"required,gt=0"`
	Bio            *string `json:"bio"`
}

// ApplyAsDoctor submits a doctor application. The account keeps working as a
// doctor-role profile immediately, but stays unbookable until an admin
// verifies the license.
func ApplyAsDoctor(c *gin.Context) {
	userID := c.GetString("user_id")

	var input ApplyAsDoctorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var existingID string
	err := config.DB.QueryRow(`SELECT id FROM doctors WHERE user_id = $1`, userID).Scan(&existingID)
	if err == nil {
		security.SendConflictError(c, "You have already submitted a doctor application")
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var doctor models.Doctor
	err = tx.QueryRow(`
		INSERT INTO doctors (user_id, specialization, license_number, hourly_rate, bio, is_verified)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING id, user_id, specialization, license_number, hourly_rate, bio, is_verified, created_at
	`, userID, input.Specialization, input.LicenseNumber, input.HourlyRate, input.Bio).Scan(
		&doctor.ID, &doctor.UserID, &doctor.Specialization, &doctor.LicenseNumber,
		&doctor.HourlyRate, &doctor.Bio, &doctor.IsVerified, &doctor.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create doctor application")
		return
	}

	_, err = tx.Exec(`UPDATE profiles SET role = 'doctor', updated_at = CURRENT_TIMESTAMP WHERE user_id = $1`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update profile role")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"doctor":  doctor,
		"message": "Application submitted. You will be notified once an admin reviews your license",
	})
}

// GetDoctors lists verified doctors for the booking directory.
func GetDoctors(c *gin.Context) {
	specialization := c.Query("specialization")
	limitStr := c.DefaultQuery("limit", "50")
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}

	query := `
		SELECT d.id, d.user_id, d.specialization, d.license_number, d.hourly_rate, d.bio,
		       d.is_verified, d.created_at, u.name,
		       AVG(co.rating), COUNT(co.rating)
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		LEFT JOIN consultations co ON co.doctor_id = d.id AND co.rating IS NOT NULL
		WHERE d.is_verified = true AND u.is_active = true
	`
	args := []interface{}{}
	argIndex := 1

	if specialization != "" {
		query += " AND LOWER(d.specialization) = $" + strconv.Itoa(argIndex)
		args = append(args, strings.ToLower(specialization))
		argIndex++
	}

	query += ` GROUP BY d.id, d.user_id, d.specialization, d.license_number, d.hourly_rate,
	          d.bio, d.is_verified, d.created_at, u.name
	          ORDER BY u.name LIMIT $` + strconv.Itoa(argIndex) + " OFFSET $" + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctors")
		return
	}
	defer rows.Close()

	doctors := []models.DoctorWithStats{}
	for rows.Next() {
		var d models.DoctorWithStats
		err := rows.Scan(&d.ID, &d.UserID, &d.Specialization, &d.LicenseNumber, &d.HourlyRate,
			&d.Bio, &d.IsVerified, &d.CreatedAt, &d.Name, &d.AverageRating, &d.ReviewCount)
		if err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	c.JSON(http.StatusOK, doctors)
}

func GetDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var d models.DoctorWithStats
	err := config.DB.QueryRow(`
		SELECT d.id, d.user_id, d.specialization, d.license_number, d.hourly_rate, d.bio,
		       d.is_verified, d.created_at, u.name,
		       AVG(co.rating), COUNT(co.rating)
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		LEFT JOIN consultations co ON co.doctor_id = d.id AND co.rating IS NOT NULL
		WHERE d.id = $1 AND d.is_verified = true
		GROUP BY d.id, d.user_id, d.specialization, d.license_number, d.hourly_rate,
		         d.bio, d.is_verified, d.created_at, u.name
	`, doctorID).Scan(&d.ID, &d.UserID, &d.Specialization, &d.LicenseNumber, &d.HourlyRate,
		&d.Bio, &d.IsVerified, &d.CreatedAt, &d.Name, &d.AverageRating, &d.ReviewCount)
	if err != nil {
		security.SendNotFoundError(c, "doctor")
		return
	}

	c.JSON(http.StatusOK, d)
}

func GetMyDoctorProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var doctor models.Doctor
	err := config.DB.QueryRow(`
		SELECT id, user_id, specialization, license_number, hourly_rate, bio, is_verified, created_at
		FROM doctors WHERE user_id = $1
	`, userID).Scan(&doctor.ID, &doctor.UserID, &doctor.Specialization, &doctor.LicenseNumber,
		&doctor.HourlyRate, &doctor.Bio, &doctor.IsVerified, &doctor.CreatedAt)
	if err != nil {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	c.JSON(http.StatusOK, doctor)
}

type UpdateDoctorProfileInput struct {
	Specialization *string  `json:"specialization" binding:"omitempty,max=100"`
	HourlyRate     *float64 `json:"hourly_rate" binding:"omitempty,gt=0"`
	Bio            *string  `json:"bio"`
}

func UpdateMyDoctorProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input UpdateDoctorProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Build dynamic update query
	query := "UPDATE doctors SET "
	args := []interface{}{}
	argIndex := 1

	if input.Specialization != nil {
		query += "specialization = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Specialization)
		argIndex++
	}
	if input.HourlyRate != nil {
		query += "hourly_rate = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.HourlyRate)
		argIndex++
	}
	if input.Bio != nil {
		query += "bio = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Bio)
		argIndex++
	}

	if len(args) == 0 {
		security.SendValidationError(c, "No fields to update", nil)
		return
	}

	query = query[:len(query)-2] + " WHERE user_id = $" + strconv.Itoa(argIndex)
	args = append(args, userID)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update doctor profile")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "doctor profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Doctor profile updated successfully"})
}

// GetMyVerificationStatus is a one-shot status read; decision pushes arrive
// over the doctor WebSocket feed.
func GetMyVerificationStatus(c *gin.Context) {
	userID := c.GetString("user_id")

	var isVerified bool
	err := config.DB.QueryRow(`SELECT is_verified FROM doctors WHERE user_id = $1`, userID).Scan(&isVerified)
	if err != nil {
		security.SendNotFoundError(c, "doctor application")
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_verified": isVerified})
}

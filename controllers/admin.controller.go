package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

// AdminHandler reviews doctor applications. Decisions are pushed to the
// applicant over the doctor WebSocket feed.
type AdminHandler struct {
	hub *ws.Hub
}

func NewAdminHandler(hub *ws.Hub) *AdminHandler {
	return &AdminHandler{hub: hub}
}

func (h *AdminHandler) GetPendingDoctors(c *gin.Context) {
	rows, err := config.DB.Query(`
		SELECT d.id, d.user_id, d.specialization, d.license_number, d.hourly_rate, d.bio,
		       d.is_verified, d.created_at, u.name
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.is_verified = false AND u.is_active = true
		ORDER BY d.created_at
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch pending doctors")
		return
	}
	defer rows.Close()

	doctors := []models.DoctorWithStats{}
	for rows.Next() {
		var d models.DoctorWithStats
		err := rows.Scan(&d.ID, &d.UserID, &d.Specialization, &d.LicenseNumber, &d.HourlyRate,
			&d.Bio, &d.IsVerified, &d.CreatedAt, &d.Name)
		if err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	c.JSON(http.StatusOK, doctors)
}

func (h *AdminHandler) VerifyDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctorUserID string
	err := config.DB.QueryRow(`
		UPDATE doctors SET is_verified = true
		WHERE id = $1 AND is_verified = false
		RETURNING user_id
	`, doctorID).Scan(&doctorUserID)
	if err != nil {
		security.SendNotFoundError(c, "pending doctor application")
		return
	}

	h.hub.Broadcast("doctor:"+doctorUserID, "verification.approved", gin.H{
		"doctor_id": doctorID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Doctor verified successfully"})
}

// RejectDoctor removes the application and reverts the profile role in one
// transaction.
func (h *AdminHandler) RejectDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var doctorUserID string
	err = tx.QueryRow(`
		DELETE FROM doctors WHERE id = $1 AND is_verified = false RETURNING user_id
	`, doctorID).Scan(&doctorUserID)
	if err != nil {
		security.SendNotFoundError(c, "pending doctor application")
		return
	}

	_, err = tx.Exec(`
		UPDATE profiles SET role = 'user', updated_at = CURRENT_TIMESTAMP WHERE user_id = $1
	`, doctorUserID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to revert profile role")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	h.hub.Broadcast("doctor:"+doctorUserID, "verification.rejected", gin.H{
		"doctor_id": doctorID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Doctor application rejected"})
}

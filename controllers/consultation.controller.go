package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/services"
	"github.com/ghazyAlghifari508/genting-apps-sub000/utils"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

// ConsultationHandler owns the booking and lifecycle endpoints. The payment
// gateway, the realtime hub and the booking timezone come in at startup.
type ConsultationHandler struct {
	gateway services.PaymentGateway
	hub     *ws.Hub
	loc     *time.Location
}

func NewConsultationHandler(gateway services.PaymentGateway, hub *ws.Hub, loc *time.Location) *ConsultationHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ConsultationHandler{gateway: gateway, hub: hub, loc: loc}
}

type CreateConsultationInput struct {
	DoctorID        string  `json:"doctor_id" binding:"required,uuid"`
	Date            string  `json:"date" binding:"required"`
	Time            string  `json:"time" binding:"required"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	Description     *string `json:"description"`
	IdempotencyKey  string  `json:"idempotency_key" binding:"required,uuid"`
}

func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	userID := c.GetString("user_id")

	var input CreateConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !utils.IsAllowedDuration(input.DurationMinutes) {
		security.SendValidationError(c, "Invalid duration", "duration_minutes must be one of 30, 60, 90, 120")
		return
	}

	// Doctors publish schedules as local wall clock, so the booking is
	// interpreted in the configured timezone
	scheduledAt, err := utils.ParseBookingTime(input.Date, input.Time, h.loc)
	if err != nil {
		security.SendValidationError(c, "Invalid date or time format", "Use YYYY-MM-DD for date and HH:MM for time")
		return
	}
	if scheduledAt.Before(time.Now()) {
		security.SendValidationError(c, "Invalid consultation time", "Consultations cannot be booked in the past")
		return
	}

	endAt := scheduledAt.Add(time.Duration(input.DurationMinutes) * time.Minute)
	startClock := scheduledAt.Format("15:04:05")
	endClock := endAt.Format("15:04:05")
	if endClock <= startClock {
		security.SendValidationError(c, "Invalid consultation time", "The consultation cannot cross midnight")
		return
	}

	// Duplicate submission with the same key returns the original booking
	idempotencyKey := uuid.MustParse(input.IdempotencyKey).String()
	if existing, err := h.consultationByKey(userID, idempotencyKey); err == nil {
		c.JSON(http.StatusOK, gin.H{"consultation": existing, "deduplicated": true})
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	// Doctor must exist, be verified and have an hourly rate to snapshot.
	// The row lock serializes concurrent bookings for the same doctor so
	// the overlap check below cannot race another insert.
	var hourlyRate float64
	err = tx.QueryRow(`
		SELECT d.hourly_rate
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $1 AND d.is_verified = true AND u.is_active = true
		FOR UPDATE OF d
	`, input.DoctorID).Scan(&hourlyRate)
	if err != nil {
		security.SendNotFoundError(c, "doctor")
		return
	}

	// The requested window must sit inside an active weekly schedule
	var insideSchedule bool
	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM doctor_schedules
			WHERE doctor_id = $1 AND day_of_week = $2 AND is_active = true
			AND start_time <= $3 AND end_time >= $4
		)
	`, input.DoctorID, int(scheduledAt.Weekday()), startClock, endClock).Scan(&insideSchedule)
	if err != nil {
		security.SendDatabaseError(c, "Failed to check doctor schedule")
		return
	}
	if !insideSchedule {
		security.SendValidationError(c, "Doctor not available", "The doctor has no schedule covering the requested time")
		return
	}

	// No overlap with the doctor's other non-terminal consultations. An
	// earlier booking can reach at most MaxDurationMinutes into this window.
	rows, err := tx.Query(`
		SELECT scheduled_at, duration_minutes FROM consultations
		WHERE doctor_id = $1
		AND status IN ('scheduled', 'ongoing')
		AND scheduled_at > $2 AND scheduled_at < $3
	`, input.DoctorID, scheduledAt.Add(-utils.MaxDurationMinutes*time.Minute), endAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to check doctor availability")
		return
	}
	overlapping := false
	for rows.Next() {
		var otherStart time.Time
		var otherMinutes int
		if err := rows.Scan(&otherStart, &otherMinutes); err != nil {
			continue
		}
		otherEnd := otherStart.Add(time.Duration(otherMinutes) * time.Minute)
		if utils.TimesOverlap(scheduledAt, endAt, otherStart, otherEnd) {
			overlapping = true
		}
	}
	rows.Close()
	if overlapping {
		security.SendConflictError(c, "Doctor already has a consultation at the requested time")
		return
	}

	totalCost := utils.TotalCost(hourlyRate, input.DurationMinutes)

	var consultation models.Consultation
	err = tx.QueryRow(`
		INSERT INTO consultations (
			user_id, doctor_id, scheduled_at, duration_minutes, hourly_rate,
			total_cost, description, idempotency_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, doctor_id, scheduled_at, duration_minutes, hourly_rate,
		          total_cost, description, status, payment_status, idempotency_key, created_at
	`, userID, input.DoctorID, scheduledAt, input.DurationMinutes, hourlyRate,
		totalCost, input.Description, idempotencyKey).Scan(
		&consultation.ID, &consultation.UserID, &consultation.DoctorID, &consultation.ScheduledAt,
		&consultation.DurationMinutes, &consultation.HourlyRate, &consultation.TotalCost,
		&consultation.Description, &consultation.Status, &consultation.PaymentStatus,
		&consultation.IdempotencyKey, &consultation.CreatedAt,
	)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		// A concurrent submission with the same key hit the unique index first
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if existing, lookupErr := h.consultationByKey(userID, idempotencyKey); lookupErr == nil {
				c.JSON(http.StatusOK, gin.H{"consultation": existing, "deduplicated": true})
				return
			}
		}
		security.SendDatabaseError(c, "Failed to create consultation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"consultation": consultation})
}

func (h *ConsultationHandler) consultationByKey(userID, key string) (*models.Consultation, error) {
	var consultation models.Consultation
	err := config.DB.QueryRow(`
		SELECT id, user_id, doctor_id, scheduled_at, duration_minutes, hourly_rate,
		       total_cost, description, status, payment_status, idempotency_key, created_at
		FROM consultations WHERE user_id = $1 AND idempotency_key = $2
	`, userID, key).Scan(
		&consultation.ID, &consultation.UserID, &consultation.DoctorID, &consultation.ScheduledAt,
		&consultation.DurationMinutes, &consultation.HourlyRate, &consultation.TotalCost,
		&consultation.Description, &consultation.Status, &consultation.PaymentStatus,
		&consultation.IdempotencyKey, &consultation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &consultation, nil
}

const consultationSelect = `
	SELECT co.id, co.user_id, co.doctor_id, co.scheduled_at, co.duration_minutes,
	       co.hourly_rate, co.total_cost, co.description, co.status, co.payment_status,
	       co.payment_method, co.payment_reference, co.payment_date,
	       co.started_at, co.ended_at, co.notes, co.rating, co.review, co.reviewed_at,
	       co.idempotency_key, co.created_at,
	       pu.name, du.name, d.specialization
	FROM consultations co
	JOIN users pu ON pu.id = co.user_id
	JOIN doctors d ON d.id = co.doctor_id
	JOIN users du ON du.id = d.user_id
`

func scanConsultationDetails(row interface {
	Scan(dest ...interface{}) error
}) (*models.ConsultationWithDetails, error) {
	var co models.ConsultationWithDetails
	err := row.Scan(
		&co.ID, &co.UserID, &co.DoctorID, &co.ScheduledAt, &co.DurationMinutes,
		&co.HourlyRate, &co.TotalCost, &co.Description, &co.Status, &co.PaymentStatus,
		&co.PaymentMethod, &co.PaymentReference, &co.PaymentDate,
		&co.StartedAt, &co.EndedAt, &co.Notes, &co.Rating, &co.Review, &co.ReviewedAt,
		&co.IdempotencyKey, &co.CreatedAt,
		&co.PatientName, &co.DoctorName, &co.DoctorSpecialization,
	)
	if err != nil {
		return nil, err
	}
	return &co, nil
}

var knownStatuses = map[string]bool{
	models.ConsultationScheduled: true,
	models.ConsultationOngoing:   true,
	models.ConsultationCompleted: true,
	models.ConsultationCancelled: true,
}

func (h *ConsultationHandler) GetConsultations(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	status := c.Query("status")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := consultationSelect
	args := []interface{}{userID}
	argIndex := 2

	// Role scoping: patients see their bookings, doctors see their sessions
	if role == "doctor" {
		query += " WHERE du.id = $1"
	} else {
		query += " WHERE co.user_id = $1"
	}

	if status != "" {
		if !knownStatuses[status] {
			security.SendValidationError(c, "Invalid status filter", "status must be scheduled, ongoing, completed or cancelled")
			return
		}
		query += " AND co.status = $" + strconv.Itoa(argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY co.scheduled_at DESC LIMIT $" + strconv.Itoa(argIndex) + " OFFSET $" + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch consultations")
		return
	}
	defer rows.Close()

	consultations := []models.ConsultationWithDetails{}
	for rows.Next() {
		co, err := scanConsultationDetails(rows)
		if err != nil {
			continue
		}
		consultations = append(consultations, *co)
	}

	c.JSON(http.StatusOK, consultations)
}

func (h *ConsultationHandler) GetConsultation(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	co, err := scanConsultationDetails(config.DB.QueryRow(
		consultationSelect+" WHERE co.id = $1", consultationID))
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}

	if !h.isParticipant(co, userID) {
		security.SendError(c, http.StatusForbidden, security.CodeNotParticipant, "Access denied",
			"Only the patient or the doctor of this consultation can view it", nil)
		return
	}

	c.JSON(http.StatusOK, co)
}

func (h *ConsultationHandler) isParticipant(co *models.ConsultationWithDetails, userID string) bool {
	if co.UserID == userID {
		return true
	}
	var doctorUserID string
	err := config.DB.QueryRow(`SELECT user_id FROM doctors WHERE id = $1`, co.DoctorID).Scan(&doctorUserID)
	return err == nil && doctorUserID == userID
}

type PayConsultationInput struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func (h *ConsultationHandler) PayConsultation(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	var input PayConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}
	if !services.IsAllowedPaymentMethod(input.PaymentMethod) {
		security.SendValidationError(c, "Invalid payment method",
			"payment_method must be bank_transfer, gopay, ovo, dana or credit_card")
		return
	}

	var paymentStatus string
	var totalCost float64
	err := config.DB.QueryRow(`
		SELECT payment_status, total_cost FROM consultations WHERE id = $1 AND user_id = $2
	`, consultationID, userID).Scan(&paymentStatus, &totalCost)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}
	if paymentStatus != models.PaymentPending {
		security.SendConflictError(c, "This consultation has already been paid")
		return
	}

	result, err := h.gateway.Charge(c.Request.Context(), services.ChargeRequest{
		ConsultationID: consultationID,
		UserID:         userID,
		Amount:         totalCost,
		Method:         input.PaymentMethod,
	})
	if errors.Is(err, services.ErrPaymentPending) {
		security.SendConflictError(c, "Payment has not settled at the gateway yet; retry once the charge completes")
		return
	}
	if err != nil {
		security.SendUpstreamError(c, "payment", "Payment gateway rejected the charge: "+err.Error())
		return
	}

	// Guarded write: a concurrent pay attempt loses here
	updateResult, err := config.DB.Exec(`
		UPDATE consultations
		SET payment_status = 'confirmed', payment_method = $1, payment_reference = $2, payment_date = $3
		WHERE id = $4 AND payment_status = 'pending'
	`, result.Method, result.Reference, result.PaidAt, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to record payment")
		return
	}
	rowsAffected, _ := updateResult.RowsAffected()
	if rowsAffected == 0 {
		security.SendConflictError(c, "This consultation has already been paid")
		return
	}

	h.hub.Broadcast("consultation:"+consultationID, "payment.confirmed", gin.H{
		"consultation_id":   consultationID,
		"payment_reference": result.Reference,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":           "Payment confirmed",
		"payment_reference": result.Reference,
		"payment_method":    result.Method,
		"payment_date":      result.PaidAt,
	})
}

// StartConsultation moves scheduled → ongoing. Doctor-only; payment must be
// confirmed first.
func (h *ConsultationHandler) StartConsultation(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	var status, paymentStatus string
	err := config.DB.QueryRow(`
		SELECT co.status, co.payment_status
		FROM consultations co
		JOIN doctors d ON d.id = co.doctor_id
		WHERE co.id = $1 AND d.user_id = $2
	`, consultationID, userID).Scan(&status, &paymentStatus)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}

	if err := utils.CanTransition(status, models.ConsultationOngoing, paymentStatus); err != nil {
		security.SendConflictError(c, err.Error())
		return
	}

	startedAt := time.Now()
	result, err := config.DB.Exec(`
		UPDATE consultations SET status = 'ongoing', started_at = $1
		WHERE id = $2 AND status = 'scheduled' AND payment_status = 'confirmed'
	`, startedAt, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to start consultation")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendConflictError(c, "Consultation is no longer in a startable state")
		return
	}

	h.hub.Broadcast("consultation:"+consultationID, "consultation.started", gin.H{
		"consultation_id": consultationID,
		"started_at":      startedAt,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Consultation started", "started_at": startedAt})
}

type CompleteConsultationInput struct {
	Notes *string `json:"notes"`
}

// CompleteConsultation moves ongoing → completed and recomputes the actual
// duration from the session timestamps.
func (h *ConsultationHandler) CompleteConsultation(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	var input CompleteConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var status, paymentStatus string
	var startedAt sql.NullTime
	err := config.DB.QueryRow(`
		SELECT co.status, co.payment_status, co.started_at
		FROM consultations co
		JOIN doctors d ON d.id = co.doctor_id
		WHERE co.id = $1 AND d.user_id = $2
	`, consultationID, userID).Scan(&status, &paymentStatus, &startedAt)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}

	if err := utils.CanTransition(status, models.ConsultationCompleted, paymentStatus); err != nil {
		security.SendConflictError(c, err.Error())
		return
	}

	endedAt := time.Now()
	durationMinutes := 0
	if startedAt.Valid {
		durationMinutes = utils.RecomputedDuration(startedAt.Time, endedAt)
	}

	result, err := config.DB.Exec(`
		UPDATE consultations
		SET status = 'completed', ended_at = $1, duration_minutes = $2, notes = COALESCE($3, notes)
		WHERE id = $4 AND status = 'ongoing'
	`, endedAt, durationMinutes, input.Notes, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to complete consultation")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendConflictError(c, "Consultation is not ongoing")
		return
	}

	h.hub.Broadcast("consultation:"+consultationID, "consultation.completed", gin.H{
		"consultation_id":  consultationID,
		"ended_at":         endedAt,
		"duration_minutes": durationMinutes,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":          "Consultation completed",
		"ended_at":         endedAt,
		"duration_minutes": durationMinutes,
	})
}

type ReviewConsultationInput struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Review *string `json:"review"`
}

// ReviewConsultation records the one-shot rating. A second submission is
// rejected instead of silently overwriting.
func (h *ConsultationHandler) ReviewConsultation(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	var input ReviewConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var status string
	var existingRating *int
	err := config.DB.QueryRow(`
		SELECT status, rating FROM consultations WHERE id = $1 AND user_id = $2
	`, consultationID, userID).Scan(&status, &existingRating)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}

	if err := utils.CanReview(status, existingRating); err != nil {
		security.SendConflictError(c, err.Error())
		return
	}

	result, err := config.DB.Exec(`
		UPDATE consultations SET rating = $1, review = $2, reviewed_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = 'completed' AND rating IS NULL
	`, input.Rating, input.Review, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to save review")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendConflictError(c, "Consultation has already been reviewed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review saved"})
}

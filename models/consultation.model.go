package models

import (
	"time"
)

// Consultation lifecycle statuses. Cancelled is accepted in filters for
// forward compatibility but no transition produces it.
const (
	ConsultationScheduled = "scheduled"
	ConsultationOngoing   = "ongoing"
	ConsultationCompleted = "completed"
	ConsultationCancelled = "cancelled"
)

// Payment statuses, tracked on the consultation row itself.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
)

type Consultation struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	DoctorID         string     `json:"doctor_id" db:"doctor_id"`
	ScheduledAt      time.Time  `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes  int        `json:"duration_minutes" db:"duration_minutes"`
	HourlyRate       float64    `json:"hourly_rate" db:"hourly_rate"`
	TotalCost        float64    `json:"total_cost" db:"total_cost"`
	Description      *string    `json:"description" db:"description"`
	Status           string     `json:"status" db:"status"`
	PaymentStatus    string     `json:"payment_status" db:"payment_status"`
	PaymentMethod    *string    `json:"payment_method" db:"payment_method"`
	PaymentReference *string    `json:"payment_reference" db:"payment_reference"`
	PaymentDate      *time.Time `json:"payment_date" db:"payment_date"`
	StartedAt        *time.Time `json:"started_at" db:"started_at"`
	EndedAt          *time.Time `json:"ended_at" db:"ended_at"`
	Notes            *string    `json:"notes" db:"notes"`
	Rating           *int       `json:"rating" db:"rating"`
	Review           *string    `json:"review" db:"review"`
	ReviewedAt       *time.Time `json:"reviewed_at" db:"reviewed_at"`
	IdempotencyKey   string     `json:"idempotency_key" db:"idempotency_key"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Extended model with the participant info both role views need.
type ConsultationWithDetails struct {
	Consultation
	PatientName          string  `json:"patient_name"`
	DoctorName           string  `json:"doctor_name"`
	DoctorSpecialization *string `json:"doctor_specialization"`
}

type ConsultationMessage struct {
	ID             string    `json:"id" db:"id"`
	ConsultationID string    `json:"consultation_id" db:"consultation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	SenderRole     string    `json:"sender_role" db:"sender_role"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

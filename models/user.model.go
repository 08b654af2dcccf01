package models

import (
	"time"
)

type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Profile carries the role and the onboarding metadata used by the
// 1000-day program calculator.
type Profile struct {
	UserID         string     `json:"user_id" db:"user_id"`
	Role           string     `json:"role" db:"role"`
	Status         *string    `json:"status" db:"status"` // pregnant | has_child
	PregnancyMonth *int       `json:"pregnancy_month" db:"pregnancy_month"`
	ChildBirthDate *time.Time `json:"child_birth_date" db:"child_birth_date"`
	Onboarded      bool       `json:"onboarded" db:"onboarded"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"
)

type EducationContent struct {
	Day   int     `json:"day" db:"day"`
	Phase string  `json:"phase" db:"phase"`
	Title string  `json:"title" db:"title"`
	Body  string  `json:"body" db:"body"`
	Tags  *string `json:"tags" db:"tags"`
	Tips  *string `json:"tips" db:"tips"`
}

type UserProgress struct {
	UserID      string     `json:"user_id" db:"user_id"`
	Day         int        `json:"day" db:"day"`
	IsRead      bool       `json:"is_read" db:"is_read"`
	IsFavorite  bool       `json:"is_favorite" db:"is_favorite"`
	ReadAt      *time.Time `json:"read_at" db:"read_at"`
	FavoritedAt *time.Time `json:"favorited_at" db:"favorited_at"`
}

type ProgressSummary struct {
	ReadCount     int `json:"read_count"`
	FavoriteCount int `json:"favorite_count"`
}

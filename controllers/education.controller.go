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

// GetEducationContents lists the daily education entries, filterable by
// phase or a single day.
func GetEducationContents(c *gin.Context) {
	phase := c.Query("phase")
	dayStr := c.Query("day")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := `SELECT day, phase, title, body, tags, tips FROM education_contents WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if phase != "" {
		query += " AND phase = $" + strconv.Itoa(argIndex)
		args = append(args, phase)
		argIndex++
	}
	if dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < utils.MinDay || day > utils.MaxDay {
			security.SendValidationError(c, "Invalid day", "day must be between 1 and 1000")
			return
		}
		query += " AND day = $" + strconv.Itoa(argIndex)
		args = append(args, day)
		argIndex++
	}

	query += " ORDER BY day LIMIT $" + strconv.Itoa(argIndex) + " OFFSET $" + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch education contents")
		return
	}
	defer rows.Close()

	contents := []models.EducationContent{}
	for rows.Next() {
		var content models.EducationContent
		err := rows.Scan(&content.Day, &content.Phase, &content.Title, &content.Body, &content.Tags, &content.Tips)
		if err != nil {
			continue
		}
		contents = append(contents, content)
	}

	c.JSON(http.StatusOK, contents)
}

// GetEducationContent returns one day's entry together with the caller's
// progress flags.
func GetEducationContent(c *gin.Context) {
	userID := c.GetString("user_id")

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < utils.MinDay || day > utils.MaxDay {
		security.SendValidationError(c, "Invalid day", "day must be between 1 and 1000")
		return
	}

	var content models.EducationContent
	err = config.DB.QueryRow(`
		SELECT day, phase, title, body, tags, tips FROM education_contents WHERE day = $1
	`, day).Scan(&content.Day, &content.Phase, &content.Title, &content.Body, &content.Tags, &content.Tips)
	if err != nil {
		security.SendNotFoundError(c, "education content")
		return
	}

	progress := models.UserProgress{UserID: userID, Day: day}
	_ = config.DB.QueryRow(`
		SELECT is_read, is_favorite, read_at, favorited_at FROM user_progress
		WHERE user_id = $1 AND day = $2
	`, userID, day).Scan(&progress.IsRead, &progress.IsFavorite, &progress.ReadAt, &progress.FavoritedAt)

	c.JSON(http.StatusOK, gin.H{
		"content":  content,
		"progress": progress,
	})
}

type UpdateProgressInput struct {
	IsRead     *bool `json:"is_read"`
	IsFavorite *bool `json:"is_favorite"`
}

// UpdateProgress upserts the per-day read/favorite flags.
func UpdateProgress(c *gin.Context) {
	userID := c.GetString("user_id")

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < utils.MinDay || day > utils.MaxDay {
		security.SendValidationError(c, "Invalid day", "day must be between 1 and 1000")
		return
	}

	var input UpdateProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}
	if input.IsRead == nil && input.IsFavorite == nil {
		security.SendValidationError(c, "No fields to update", "Provide is_read and/or is_favorite")
		return
	}

	var exists bool
	err = config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM education_contents WHERE day = $1)`, day).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to check education content")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "education content")
		return
	}

	var progress models.UserProgress
	err = config.DB.QueryRow(`
		INSERT INTO user_progress (user_id, day, is_read, is_favorite, read_at, favorited_at)
		VALUES ($1, $2,
		        COALESCE($3, false),
		        COALESCE($4, false),
		        CASE WHEN $3 = true THEN CURRENT_TIMESTAMP END,
		        CASE WHEN $4 = true THEN CURRENT_TIMESTAMP END)
		ON CONFLICT (user_id, day) DO UPDATE SET
		        is_read = COALESCE($3, user_progress.is_read),
		        is_favorite = COALESCE($4, user_progress.is_favorite),
		        read_at = CASE WHEN $3 = true AND user_progress.read_at IS NULL
		                       THEN CURRENT_TIMESTAMP ELSE user_progress.read_at END,
		        favorited_at = CASE WHEN $4 = true THEN CURRENT_TIMESTAMP
		                            WHEN $4 = false THEN NULL
		                            ELSE user_progress.favorited_at END
		RETURNING user_id, day, is_read, is_favorite, read_at, favorited_at
	`, userID, day, input.IsRead, input.IsFavorite).Scan(
		&progress.UserID, &progress.Day, &progress.IsRead, &progress.IsFavorite,
		&progress.ReadAt, &progress.FavoritedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}

func GetProgress(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := config.DB.Query(`
		SELECT user_id, day, is_read, is_favorite, read_at, favorited_at
		FROM user_progress WHERE user_id = $1 ORDER BY day
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch progress")
		return
	}
	defer rows.Close()

	entries := []models.UserProgress{}
	summary := models.ProgressSummary{}
	for rows.Next() {
		var progress models.UserProgress
		err := rows.Scan(&progress.UserID, &progress.Day, &progress.IsRead, &progress.IsFavorite,
			&progress.ReadAt, &progress.FavoritedAt)
		if err != nil {
			continue
		}
		if progress.IsRead {
			summary.ReadCount++
		}
		if progress.IsFavorite {
			summary.FavoriteCount++
		}
		entries = append(entries, progress)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"summary": summary,
	})
}

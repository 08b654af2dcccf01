package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/services"
)

const maxImageBytes = 5 << 20 // 5 MiB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NutritionHandler runs the food photo pipeline: bucket upload, vision model
// call, food log insert.
type NutritionHandler struct {
	supabase *supa.Client
	analyzer services.NutritionAnalyzer
	cfg      *config.Config
}

func NewNutritionHandler(supabase *supa.Client, analyzer services.NutritionAnalyzer, cfg *config.Config) *NutritionHandler {
	return &NutritionHandler{supabase: supabase, analyzer: analyzer, cfg: cfg}
}

func (h *NutritionHandler) AnalyzeFood(c *gin.Context) {
	userID := c.GetString("user_id")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		security.SendValidationError(c, "Missing image", "Attach the food photo as the image form field")
		return
	}
	if fileHeader.Size > maxImageBytes {
		security.SendValidationError(c, "Image too large", "The image must be at most 5 MB")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		security.SendValidationError(c, "Unsupported image type", "Use a JPEG, PNG or WebP image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		security.SendValidationError(c, "Unreadable image", err.Error())
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || int64(len(image)) > maxImageBytes {
		security.SendValidationError(c, "Unreadable image", "Failed to read the uploaded image")
		return
	}

	analysis, err := h.analyzer.AnalyzeFood(c.Request.Context(), image, mimeType)
	if err != nil {
		security.SendUpstreamError(c, "nutrition", "Food analysis failed: "+err.Error())
		return
	}

	// Upload only after a successful analysis so failed calls leave nothing
	// behind in the bucket
	objectPath := fmt.Sprintf("%s/%d-%s%s", userID, time.Now().Unix(), uuid.NewString()[:8], ext)
	_, err = h.supabase.Storage.UploadFile(h.cfg.FoodImageBucket, objectPath, bytes.NewReader(image))
	if err != nil {
		security.SendUpstreamError(c, "storage", "Failed to store the food image: "+err.Error())
		return
	}
	imageURL := h.supabase.Storage.GetPublicUrl(h.cfg.FoodImageBucket, objectPath).SignedURL

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		security.SendDatabaseError(c, "Failed to encode analysis")
		return
	}

	var log models.FoodLog
	err = config.DB.QueryRow(`
		INSERT INTO food_logs (user_id, image_url, analysis)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, image_url, created_at
	`, userID, imageURL, analysisJSON).Scan(&log.ID, &log.UserID, &log.ImageURL, &log.CreatedAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to save food log")
		return
	}
	log.Analysis = *analysis

	c.JSON(http.StatusCreated, log)
}

func (h *NutritionHandler) GetFoodLogs(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 30
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	rows, err := config.DB.Query(`
		SELECT id, user_id, image_url, analysis, created_at
		FROM food_logs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch food logs")
		return
	}
	defer rows.Close()

	logs := []models.FoodLog{}
	for rows.Next() {
		var log models.FoodLog
		var analysisJSON []byte
		err := rows.Scan(&log.ID, &log.UserID, &log.ImageURL, &analysisJSON, &log.CreatedAt)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(analysisJSON, &log.Analysis); err != nil {
			continue
		}
		logs = append(logs, log)
	}

	c.JSON(http.StatusOK, logs)
}

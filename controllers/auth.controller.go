package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
)

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	err := config.DB.Ping()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "genting-backend",
		"timestamp": time.Now().Unix(),
	})
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Check if email already exists
	var existingID string
	err := config.DB.QueryRow(`SELECT id FROM users WHERE email = $1`, input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ($1,$2,$3) RETURNING id
	`, input.Name, input.Email, string(passHash)).Scan(&userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create user")
		return
	}

	// Every account starts as a plain user; the doctor role is granted
	// through the application + verification flow.
	_, err = tx.Exec(`INSERT INTO profiles (user_id, role) VALUES ($1, 'user')`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create profile")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	accessToken, err := security.SignAccessToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, err := security.SignRefreshToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.DB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1,$2,$3)`, userID, refreshToken, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	user := models.User{
		ID:        userID,
		Name:      input.Name,
		Email:     input.Email,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var user models.User
	err := config.DB.QueryRow(`
		SELECT id, password_hash, name, email
		FROM users
		WHERE email = $1 AND is_active = true
	`, input.Email).Scan(&user.ID, &user.PasswordHash, &user.Name, &user.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	_, err = config.DB.Exec(`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`, user.ID)
	if err != nil {
		c.Header("X-Warning", "Failed to update last login timestamp")
	}

	accessToken, err := security.SignAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, err := security.SignRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.DB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1,$2,$3)`, user.ID, refreshToken, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	var role string
	err = config.DB.QueryRow(`SELECT role FROM profiles WHERE user_id = $1`, user.ID).Scan(&role)
	if err != nil {
		role = "user"
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"role":         role,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	token, err := security.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	userID, _ := claims["sub"].(string)

	// The token must still be on record (revocation check)
	var exists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE user_id = $1 AND token = $2 AND expires_at > CURRENT_TIMESTAMP)
	`, userID, input.RefreshToken).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to verify refresh token")
		return
	}
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token revoked or expired"})
		return
	}

	accessToken, err := security.SignAccessToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	var profile models.Profile
	err := config.DB.QueryRow(`
		SELECT u.id, u.name, u.email, u.is_active, u.created_at,
		       p.role, p.status, p.pregnancy_month, p.child_birth_date, p.onboarded
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.IsActive, &user.CreatedAt,
		&profile.Role, &profile.Status, &profile.PregnancyMonth, &profile.ChildBirthDate, &profile.Onboarded,
	)
	if err != nil {
		security.SendNotFoundError(c, "user")
		return
	}
	profile.UserID = user.ID

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

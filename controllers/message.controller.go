package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

// MessageHandler serves the consultation chat. Inserts go through REST; the
// hub fans the new row out to connected participants.
type MessageHandler struct {
	hub *ws.Hub
}

func NewMessageHandler(hub *ws.Hub) *MessageHandler {
	return &MessageHandler{hub: hub}
}

// participantRole returns the caller's role inside the consultation, or ""
// when the caller is not a participant.
func participantRole(consultationID, userID string) (string, error) {
	var patientID, doctorUserID string
	err := config.DB.QueryRow(`
		SELECT co.user_id, d.user_id
		FROM consultations co
		JOIN doctors d ON d.id = co.doctor_id
		WHERE co.id = $1
	`, consultationID).Scan(&patientID, &doctorUserID)
	if err != nil {
		return "", err
	}
	switch userID {
	case patientID:
		return "user", nil
	case doctorUserID:
		return "doctor", nil
	default:
		return "", nil
	}
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	role, err := participantRole(consultationID, userID)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}
	if role == "" {
		security.SendError(c, http.StatusForbidden, security.CodeNotParticipant, "Access denied",
			"Only the patient or the doctor of this consultation can read its messages", nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, consultation_id, sender_id, sender_role, body, created_at
		FROM consultation_messages
		WHERE consultation_id = $1
	`
	args := []interface{}{consultationID}
	argIndex := 2

	// before is a cursor for loading older history
	if before := c.Query("before"); before != "" {
		ts, err := time.Parse(time.RFC3339, before)
		if err != nil {
			security.SendValidationError(c, "Invalid before cursor", "Use an RFC3339 timestamp")
			return
		}
		query += " AND created_at < $" + strconv.Itoa(argIndex)
		args = append(args, ts)
		argIndex++
	}

	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(argIndex)
	args = append(args, limit)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch messages")
		return
	}
	defer rows.Close()

	messages := []models.ConsultationMessage{}
	for rows.Next() {
		var msg models.ConsultationMessage
		err := rows.Scan(&msg.ID, &msg.ConsultationID, &msg.SenderID, &msg.SenderRole, &msg.Body, &msg.CreatedAt)
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	// Oldest first for rendering
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageInput struct {
	Body string `json:"body" binding:"required,max=4000"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	consultationID := c.Param("id")

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	role, err := participantRole(consultationID, userID)
	if err != nil {
		security.SendNotFoundError(c, "consultation")
		return
	}
	if role == "" {
		security.SendError(c, http.StatusForbidden, security.CodeNotParticipant, "Access denied",
			"Only the patient or the doctor of this consultation can send messages", nil)
		return
	}

	var msg models.ConsultationMessage
	err = config.DB.QueryRow(`
		INSERT INTO consultation_messages (consultation_id, sender_id, sender_role, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, consultation_id, sender_id, sender_role, body, created_at
	`, consultationID, userID, role, input.Body).Scan(
		&msg.ID, &msg.ConsultationID, &msg.SenderID, &msg.SenderRole, &msg.Body, &msg.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to send message")
		return
	}

	h.hub.Broadcast("consultation:"+consultationID, "message.created", msg)

	c.JSON(http.StatusCreated, msg)
}

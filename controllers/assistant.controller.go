package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/services"
)

// transcript turns kept per request when talking to the model
const historyWindow = 20

var errNotFound = errors.New("not found")

// AssistantHandler serves the AI chat assistant with persisted transcripts.
type AssistantHandler struct {
	assistant services.ChatAssistant
}

func NewAssistantHandler(assistant services.ChatAssistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

type CreateChatInput struct {
	Title *string `json:"title" binding:"omitempty,max=200"`
}

func (h *AssistantHandler) CreateChat(c *gin.Context) {
	userID := c.GetString("user_id")

	var input CreateChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	title := "New conversation"
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		title = strings.TrimSpace(*input.Title)
	}

	var chat models.Chat
	err := config.DB.QueryRow(`
		INSERT INTO chats (user_id, title) VALUES ($1, $2)
		RETURNING id, user_id, title, created_at
	`, userID, title).Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create chat")
		return
	}

	c.JSON(http.StatusCreated, chat)
}

func (h *AssistantHandler) GetChats(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := config.DB.Query(`
		SELECT id, user_id, title, created_at FROM chats
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch chats")
		return
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt); err != nil {
			continue
		}
		chats = append(chats, chat)
	}

	c.JSON(http.StatusOK, chats)
}

// ownedChat verifies the chat belongs to the caller.
func ownedChat(chatID, userID string) error {
	var exists bool
	err := config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1 AND user_id = $2)
	`, chatID, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return errNotFound
	}
	return nil
}

func (h *AssistantHandler) GetChatMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")

	if err := ownedChat(chatID, userID); err != nil {
		security.SendNotFoundError(c, "chat")
		return
	}

	rows, err := config.DB.Query(`
		SELECT id, chat_id, role, body, created_at FROM chat_messages
		WHERE chat_id = $1 ORDER BY created_at
	`, chatID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch chat messages")
		return
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Body, &msg.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	c.JSON(http.StatusOK, messages)
}

type SendChatMessageInput struct {
	Message string `json:"message" binding:"required,max=4000"`
}

func (h *AssistantHandler) SendChatMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")

	var input SendChatMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if err := ownedChat(chatID, userID); err != nil {
		security.SendNotFoundError(c, "chat")
		return
	}

	// Load the recent transcript for model context
	rows, err := config.DB.Query(`
		SELECT id, chat_id, role, body, created_at FROM (
			SELECT id, chat_id, role, body, created_at FROM chat_messages
			WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at
	`, chatID, historyWindow)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load chat history")
		return
	}
	defer rows.Close()

	history := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Body, &msg.CreatedAt); err != nil {
			continue
		}
		history = append(history, msg)
	}

	response, err := h.assistant.Chat(c.Request.Context(), history, input.Message)
	if err != nil {
		security.SendUpstreamError(c, "assistant", "Assistant is unavailable: "+err.Error())
		return
	}

	// Persist both turns together; a crash between them would corrupt the
	// transcript order
	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO chat_messages (chat_id, role, body) VALUES ($1, 'user', $2)
	`, chatID, input.Message)
	if err != nil {
		security.SendDatabaseError(c, "Failed to save message")
		return
	}

	var reply models.ChatMessage
	err = tx.QueryRow(`
		INSERT INTO chat_messages (chat_id, role, body) VALUES ($1, 'model', $2)
		RETURNING id, chat_id, role, body, created_at
	`, chatID, response).Scan(&reply.ID, &reply.ChatID, &reply.Role, &reply.Body, &reply.CreatedAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to save reply")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": response, "message": reply})
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterClient is the alternate chat assistant provider, speaking the
// OpenAI-compatible completions API.
type OpenRouterClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	return &OpenRouterClient{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model    string              `json:"model"`
	Messages []openRouterMessage `json:"messages"`
}

type openRouterResponse struct {
	Choices []struct {
		Message openRouterMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenRouterClient) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	messages := []openRouterMessage{{Role: "system", Content: assistantPrompt}}
	for _, msg := range history {
		role := msg.Role
		if role == models.ChatRoleModel {
			role = "assistant"
		}
		messages = append(messages, openRouterMessage{Role: role, Content: msg.Body})
	}
	messages = append(messages, openRouterMessage{Role: "user", Content: message})

	payloadBytes, err := json.Marshal(openRouterRequest{Model: o.Model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openRouterURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var chatResp openRouterResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.New("invalid model response: " + err.Error())
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openrouter error %d: %s", chatResp.Error.Code, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ghazyAlghifari508/genting-apps-sub000/models"
)

// NutritionAnalyzer extracts the nutrition profile of a food photo.
type NutritionAnalyzer interface {
	AnalyzeFood(ctx context.Context, image []byte, mimeType string) (*models.FoodAnalysis, error)
}

// ChatAssistant answers a user message given the prior transcript.
type ChatAssistant interface {
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// foodPrompt pins the model to the exact JSON contract the food_logs table
// and the client expect.
const foodPrompt = `You are a nutritionist focused on stunting prevention for pregnant women and children under two.
Analyze the food in this image and respond with ONLY a JSON object, no prose, using exactly these keys:
{"foodName": string, "calories": number, "protein": number, "carbs": number, "fat": number,
"iron": number, "zinc": number, "calcium": number, "folicAcid": number, "vitaminA": number,
"stuntingNutritionScore": integer 0-100, "tip": string, "isHealthy": boolean}.
Amounts are per serving shown. stuntingNutritionScore rates how well the food supports growth in the first 1000 days.`

// assistantPrompt frames the chat assistant.
const assistantPrompt = `You are GENTING's assistant for maternal and child health education during the first 1000 days of life. Answer briefly, practically and in plain language. Recommend seeing a doctor for anything clinical.`

// ParseFoodAnalysis decodes a model response into the food analysis contract.
// Models often wrap JSON in markdown fences; those are stripped first. The
// score is clamped to [0,100].
func ParseFoodAnalysis(raw string) (*models.FoodAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var analysis models.FoodAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, errors.New("model response is not valid JSON: " + err.Error())
	}
	if analysis.FoodName == "" {
		return nil, errors.New("model response missing foodName")
	}

	if analysis.StuntingNutritionScore < 0 {
		analysis.StuntingNutritionScore = 0
	}
	if analysis.StuntingNutritionScore > 100 {
		analysis.StuntingNutritionScore = 100
	}

	return &analysis, nil
}

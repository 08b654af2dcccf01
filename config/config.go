package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	BookingTZ      string

	SupabaseURL        string
	SupabaseServiceKey string
	FoodImageBucket    string

	GeminiAPIKey    string
	GeminiModel     string
	OpenRouterKey   string
	OpenRouterModel string
	ChatProvider    string

	PaymentProvider   string
	MidtransServerKey string
	MidtransBaseURL   string
}

func NewConfig() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000"}
	if allowedOriginsStr != "" {
		allowedOrigins = strings.Split(allowedOriginsStr, ",")
	}

	return &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		AllowedOrigins: allowedOrigins,
		BookingTZ:      getEnvOrDefault("BOOKING_TIMEZONE", "Asia/Jakarta"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		FoodImageBucket:    getEnvOrDefault("FOOD_IMAGE_BUCKET", "food-images"),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenRouterKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel: getEnvOrDefault("OPENROUTER_MODEL", "meta-llama/llama-3.1-8b-instruct"),
		ChatProvider:    getEnvOrDefault("AI_CHAT_PROVIDER", "gemini"),

		PaymentProvider:   getEnvOrDefault("PAYMENT_PROVIDER", "simulated"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransBaseURL:   getEnvOrDefault("MIDTRANS_BASE_URL", "https://api.sandbox.midtrans.com"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/controllers"
	"github.com/ghazyAlghifari508/genting-apps-sub000/routes"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/services"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.NewConfig()
	config.ConnectDB()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	supabaseClient := config.NewSupabaseClient(cfg)
	hub := ws.NewHub()

	bookingLoc, err := time.LoadLocation(cfg.BookingTZ)
	if err != nil {
		log.Fatalf("Invalid BOOKING_TIMEZONE %q: %v", cfg.BookingTZ, err)
	}

	var gateway services.PaymentGateway
	if cfg.PaymentProvider == "midtrans" {
		gateway = services.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransBaseURL)
	} else {
		gateway = services.NewSimulatedGateway()
	}

	gemini := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	var assistant services.ChatAssistant = gemini
	if cfg.ChatProvider == "openrouter" {
		assistant = services.NewOpenRouterClient(cfg.OpenRouterKey, cfg.OpenRouterModel)
	}

	handlers := &routes.Handlers{
		Consultation: controllers.NewConsultationHandler(gateway, hub, bookingLoc),
		Message:      controllers.NewMessageHandler(hub),
		Nutrition:    controllers.NewNutritionHandler(supabaseClient, gemini, cfg),
		Assistant:    controllers.NewAssistantHandler(assistant),
		Admin:        controllers.NewAdminHandler(hub),
		Hub:          hub,
	}

	r := gin.Default()
	r.Use(security.CORSMiddleware(cfg.AllowedOrigins))

	api := r.Group("/api/v1")
	routes.SetupRoutes(api, handlers)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("GENTING backend starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down GENTING backend...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("GENTING backend exited")
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/controllers"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

// Handlers bundles the controllers that carry startup dependencies.
type Handlers struct {
	Consultation *controllers.ConsultationHandler
	Message      *controllers.MessageHandler
	Nutrition    *controllers.NutritionHandler
	Assistant    *controllers.AssistantHandler
	Admin        *controllers.AdminHandler
	Hub          *ws.Hub
}

func SetupRoutes(rg *gin.RouterGroup, h *Handlers) {
	// Health check endpoint (no auth required)
	rg.GET("/health", controllers.HealthCheck)

	// Auth
	auth := rg.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/refresh", controllers.Refresh)
		auth.GET("/me", security.AuthMiddleware(config.DB), controllers.Me)
	}

	// WebSocket subscriptions authenticate via query token inside the handler
	rg.GET("/ws", ws.Handle(h.Hub))
	rg.GET("/ws/doctor", ws.HandleDoctorFeed(h.Hub))

	// Everything below requires a valid access token
	authed := rg.Group("")
	authed.Use(security.AuthMiddleware(config.DB))

	// Profile & 1000-day program
	authed.PUT("/profile/onboarding", controllers.UpdateOnboarding)
	authed.GET("/program/today", controllers.GetProgramToday)

	// Education timeline
	education := authed.Group("/education")
	{
		education.GET("/contents", controllers.GetEducationContents)
		education.GET("/contents/:day", controllers.GetEducationContent)
		education.POST("/progress/:day", controllers.UpdateProgress)
		education.GET("/progress", controllers.GetProgress)
	}

	// Doctor directory & application
	doctors := authed.Group("/doctors")
	{
		doctors.GET("", controllers.GetDoctors)
		doctors.POST("/apply", security.RequireRole(config.DB, "user"), controllers.ApplyAsDoctor)
		doctors.GET("/me", security.RequireRole(config.DB, "doctor"), controllers.GetMyDoctorProfile)
		doctors.PUT("/me", security.RequireRole(config.DB, "doctor"), controllers.UpdateMyDoctorProfile)
		doctors.GET("/me/verification", security.RequireRole(config.DB, "doctor"), controllers.GetMyVerificationStatus)
		doctors.GET("/me/schedules", security.RequireRole(config.DB, "doctor"), controllers.GetMySchedules)
		doctors.POST("/me/schedules", security.RequireRole(config.DB, "doctor"), controllers.CreateMySchedule)
		doctors.PUT("/me/schedules/:id", security.RequireRole(config.DB, "doctor"), controllers.UpdateMySchedule)
		doctors.DELETE("/me/schedules/:id", security.RequireRole(config.DB, "doctor"), controllers.DeleteMySchedule)
		doctors.GET("/:id", controllers.GetDoctor)
		doctors.GET("/:id/schedules", controllers.GetDoctorSchedules)
	}

	// Consultations: booking, payment, lifecycle, chat
	consultations := authed.Group("/consultations")
	{
		consultations.POST("", security.RequireRole(config.DB, "user"), h.Consultation.CreateConsultation)
		consultations.GET("", security.RequireRole(config.DB, "user", "doctor"), h.Consultation.GetConsultations)
		consultations.GET("/:id", h.Consultation.GetConsultation)
		consultations.POST("/:id/pay", security.RequireRole(config.DB, "user"), h.Consultation.PayConsultation)
		consultations.POST("/:id/start", security.RequireRole(config.DB, "doctor"), h.Consultation.StartConsultation)
		consultations.POST("/:id/complete", security.RequireRole(config.DB, "doctor"), h.Consultation.CompleteConsultation)
		consultations.POST("/:id/review", security.RequireRole(config.DB, "user"), h.Consultation.ReviewConsultation)
		consultations.GET("/:id/messages", h.Message.GetMessages)
		consultations.POST("/:id/messages", h.Message.SendMessage)
	}

	// AI nutrition analyzer
	nutrition := authed.Group("/nutrition")
	{
		nutrition.POST("/analyze", h.Nutrition.AnalyzeFood)
		nutrition.GET("/logs", h.Nutrition.GetFoodLogs)
	}

	// AI chat assistant
	assistant := authed.Group("/assistant")
	{
		assistant.POST("/chats", h.Assistant.CreateChat)
		assistant.GET("/chats", h.Assistant.GetChats)
		assistant.GET("/chats/:id/messages", h.Assistant.GetChatMessages)
		assistant.POST("/chats/:id/messages", h.Assistant.SendChatMessage)
	}

	// Admin verification panel
	admin := authed.Group("/admin")
	admin.Use(security.RequireRole(config.DB, "admin"))
	{
		admin.GET("/doctors/pending", h.Admin.GetPendingDoctors)
		admin.POST("/doctors/:id/verify", h.Admin.VerifyDoctor)
		admin.POST("/doctors/:id/reject", h.Admin.RejectDoctor)
	}
}

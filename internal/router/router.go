package router

import (
	"time"

	"github.com/MpenduloXulu/TTI-Website/internal/handlers"
	"github.com/MpenduloXulu/TTI-Website/internal/middleware"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/dashboard", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.DashboardWebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/profile", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.DELETE("/account", middleware.AuthMiddleware(), handlers.DeleteAccount)
		}

		funding := api.Group("/funding", middleware.AuthMiddleware())
		{
			funding.GET("", handlers.ListOpportunities)
			funding.GET("/:opportunity_id", handlers.GetOpportunity)

			funding.POST("", middleware.RequireAdmin(), handlers.CreateOpportunity)
			funding.PUT("/:opportunity_id", middleware.RequireAdmin(), handlers.UpdateOpportunity)
			funding.DELETE("/:opportunity_id", middleware.RequireAdmin(), handlers.DeleteOpportunity)

			// Draft endpoints
			funding.GET("/:opportunity_id/draft", handlers.LoadDraft)
			funding.PUT("/:opportunity_id/draft", handlers.SaveDraft)
			funding.DELETE("/:opportunity_id/draft", handlers.DeleteDraft)

			funding.POST("/:opportunity_id/attachments", handlers.UploadAttachments)
			funding.POST("/:opportunity_id/applications", handlers.SubmitApplication)
		}

		applications := api.Group("/applications", middleware.AuthMiddleware())
		{
			applications.GET("", handlers.ListApplications)
			applications.GET("/:application_id", handlers.GetApplication)

			applications.POST("/import", middleware.RequireAdmin(), handlers.ImportLegacyApplications)

			applications.POST("/:application_id/decision", middleware.RequireAdmin(), handlers.DecideApplication)
			applications.PUT("/:application_id/allocation", middleware.RequireAdmin(), handlers.SaveAllocation)

			applications.POST("/:application_id/reviews", middleware.RequireAdmin(), handlers.CreateReview)
			applications.GET("/:application_id/reviews", middleware.RequireAdmin(), handlers.ListReviews)
		}

		api.DELETE("/attachments", middleware.AuthMiddleware(), handlers.DeleteAttachment)

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.PATCH("/:notification_id/read", handlers.MarkNotificationRead)
		}

		api.GET("/dashboard", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.AdminDashboard)
	}

	return r
}

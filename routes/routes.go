package routes

import (
	"scholar-review-api/controllers"
	"scholar-review-api/middleware"
	"scholar-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Payment gateway callback (HMAC signed, no session)
			public.POST("/payments/webhook", controllers.PaymentWebhook)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Scholar Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Publications
			publications := protected.Group("/publications")
			{
				publications.GET("", controllers.GetPublications)
				publications.GET("/:id", controllers.GetPublication)
				publications.POST("", controllers.CreatePublication)
				publications.PUT("/:id", controllers.UpdatePublication)
				publications.DELETE("/:id", controllers.DeletePublication)

				// Workflow transitions
				publications.POST("/:id/submit", controllers.SubmitPublication)
				publications.POST("/:id/review",
					middleware.RequireRole(models.RoleEditor, models.RoleAdmin),
					controllers.ReviewPublication)
			}

			// Payments
			payments := protected.Group("/payments")
			{
				payments.POST("/initialize", controllers.InitializePayment)
				payments.GET("/verify/:reference", controllers.VerifyPayment)
				payments.GET("/detail/:reference", controllers.GetPayment)
				payments.POST("/refund/:reference", controllers.RequestRefund)
				payments.GET("/history", controllers.GetPaymentHistory)
				payments.GET("/subscription", controllers.GetSubscriptionStatus)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("", controllers.GetDashboard)
				dashboard.GET("/monthly-approved",
					middleware.RequireRole(models.RoleEditor, models.RoleAdmin),
					controllers.GetMonthlyApproved)
				dashboard.GET("/dual-fee-payers",
					middleware.RequireRole(models.RoleAdmin),
					controllers.GetDualFeePayers)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}

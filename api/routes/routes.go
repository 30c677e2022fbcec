package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/config"
	"github.com/zagel-app/zagel-backend/internal/handlers"
	"github.com/zagel-app/zagel-backend/internal/middleware"
)

// HandlerDependencies carries the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	SessionHandler   *handlers.SessionHandler
	CampaignHandler  *handlers.CampaignHandler
	DispatchHandler  *handlers.DispatchHandler
	AutoReplyHandler *handlers.AutoReplyHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, log zerolog.Logger, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// The transport adapter posts inbound messages here
		public.POST("/webhooks/inbound", deps.AutoReplyHandler.HandleInbound)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		sessions := protected.Group("/sessions")
		{
			sessions.GET("", deps.SessionHandler.GetSessions)
			sessions.POST("", deps.SessionHandler.CreateSession)
			sessions.DELETE("/:sessionId", deps.SessionHandler.DeleteSession)
		}

		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.GET("/:id", deps.CampaignHandler.GetCampaignByID)
			campaigns.POST("", deps.CampaignHandler.CreateCampaign)
			campaigns.PUT("/:id", deps.CampaignHandler.UpdateCampaign)
			campaigns.DELETE("/:id", deps.CampaignHandler.DeleteCampaign)
			campaigns.POST("/:id/start", deps.CampaignHandler.StartCampaign)
			campaigns.POST("/:id/pause", deps.CampaignHandler.PauseCampaign)
			campaigns.POST("/:id/resume", deps.CampaignHandler.ResumeCampaign)
			campaigns.POST("/:id/stop", deps.CampaignHandler.StopCampaign)
		}

		dispatch := protected.Group("/dispatch")
		{
			dispatch.GET("/events", deps.DispatchHandler.StreamEvents)
			dispatch.POST("/:sessionId", deps.DispatchHandler.StartDispatch)
			dispatch.POST("/:sessionId/stop", deps.DispatchHandler.StopDispatch)
		}

		autoreplies := protected.Group("/autoreplies")
		{
			autoreplies.GET("", deps.AutoReplyHandler.GetRules)
			autoreplies.POST("", deps.AutoReplyHandler.CreateRule)
			autoreplies.PUT("/:id", deps.AutoReplyHandler.UpdateRule)
			autoreplies.DELETE("/:id", deps.AutoReplyHandler.DeleteRule)
		}
	}

	return router
}

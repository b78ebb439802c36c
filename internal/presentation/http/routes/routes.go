// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/flipkraft/flipkraft-go/internal/application/container"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/handlers"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SessionMiddleware())

	// Serve the demo storefront and admin dashboard.
	r.Static("/app", "web/app")
	r.StaticFile("/favicon.ico", "web/app/favicon.ico")

	// Initialize handlers
	visitHandlers := handlers.NewVisitHandlers(container.SessionService, container.Broadcaster, container.Logger)
	eventHandlers := handlers.NewEventHandlers(container.EventService, container.Broadcaster, container.Logger)
	chatHandlers := handlers.NewChatHandlers(container.ChatService, container.Broadcaster, container.Logger)
	leadHandlers := handlers.NewLeadHandlers(container.LeadService, container.Broadcaster, container.Logger)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.LeadAnalyticsService, container.DashboardBroadcaster, container.Logger)

	api := r.Group("/api/v1")
	{
		// Session lifecycle and real-time feed
		auth := api.Group("/auth")
		{
			auth.POST("/visit", visitHandlers.PostVisit)
			auth.GET("/sse", visitHandlers.GetSSE)
		}

		// Visitor engagement
		api.POST("/events", middleware.RequireSession(), eventHandlers.PostEvents)
		api.POST("/ask", middleware.RequireSession(), chatHandlers.PostAsk)
		api.GET("/state", middleware.RequireSession(), visitHandlers.GetState)

		// Capture form lifecycle
		capture := api.Group("/capture", middleware.RequireSession())
		{
			capture.POST("/shown", leadHandlers.PostCaptureShown)
			capture.POST("/decline", leadHandlers.PostCaptureDecline)
		}

		nudge := api.Group("/nudge", middleware.RequireSession())
		{
			nudge.POST("/accept", leadHandlers.PostNudgeAccept)
			nudge.POST("/decline", leadHandlers.PostNudgeDecline)
		}

		api.POST("/lead", middleware.RequireSession(), leadHandlers.PostLead)

		// Admin authentication
		admin := api.Group("/admin")
		{
			admin.POST("/login", authHandlers.PostLogin)
			admin.POST("/logout", authHandlers.PostLogout)
			admin.GET("/status", authHandlers.GetAuthStatus)
		}

		// Admin-only lead analytics and overrides
		protected := api.Group("")
		protected.Use(authHandlers.AuthMiddleware())
		{
			protected.GET("/leads", analyticsHandlers.GetLeads)
			protected.GET("/analytics/leads", analyticsHandlers.GetLeadMetrics)
			protected.GET("/analytics/ws", analyticsHandlers.GetDashboardWS)
			protected.POST("/capture/force", middleware.RequireSession(), leadHandlers.PostCaptureForce)
			protected.POST("/session/reset", middleware.RequireSession(), visitHandlers.PostReset)
		}
	}

	return r
}

package server

import "github.com/gin-gonic/gin"

// registerRoutes sets up the public chat API and the admin surface.
func registerRoutes(router *gin.Engine, d Deps) {
	// Public chat API.
	router.POST("/chat/new", handleChatNew(d))
	router.POST("/chat", handleChatSend(d))
	router.GET("/chat/:conversationID", handleChatHistory(d))

	// Admin auth.
	router.POST("/admin/login", handleAdminLogin(d))
	router.POST("/admin/logout", handleAdminLogout(d))

	// Admin API, session-gated.
	api := router.Group("/admin/api", requireAdmin(d.Sessions))
	{
		api.GET("/conversations", handleConversationList(d))
		api.GET("/conversations/:id", handleConversationDetail(d))
		api.POST("/conversations/:id/kill", handleConversationKill(d))
		api.POST("/conversations/:id/reactivate", handleConversationReactivate(d))
		api.GET("/conversations/:id/mood", handleMoodHistory(d))
		api.GET("/conversations/:id/trend", handleMoodTrend(d))
		api.GET("/conversations/:id/summary", handleSummary(d))
		api.GET("/stats", handleStats(d))

		api.GET("/products", handleProductList(d))
		api.POST("/products", handleProductCreate(d))
		api.PUT("/products/:id", handleProductUpdate(d))
		api.DELETE("/products/:id", handleProductDelete(d))
	}
}

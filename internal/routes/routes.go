package routes

import (
	"github.com/devlink/devlink-backend/internal/handler"
	"github.com/devlink/devlink-backend/internal/middleware"
	"github.com/devlink/devlink-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	requestHandler *handler.RequestHandler,
	presenceHandler *handler.PresenceHandler,
	followHandler *handler.FollowHandler,
	feedHandler *handler.FeedHandler,
	notificationHandler *handler.NotificationHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")

	// Authentication endpoints (no auth required)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/username-available", authHandler.UsernameAvailable)
	auth.GET("/github-link", middleware.JWTAuth(jwtManager), authHandler.GithubLink)

	// Chat threads and messages
	chats := api.Group("/chats", middleware.JWTAuth(jwtManager))
	{
		chats.GET("", chatHandler.ListConversations)
		chats.POST("/threads/direct", chatHandler.EnsureDirectThread)
		chats.POST("/threads/group", chatHandler.CreateGroupThread)
		chats.GET("/threads/:thread_id", chatHandler.GetThread)
		chats.DELETE("/threads/:thread_id", chatHandler.DeleteThread)
		chats.GET("/threads/:thread_id/messages", chatHandler.GetMessages)
		chats.POST("/threads/:thread_id/messages", chatHandler.SendMessage)
		chats.PUT("/threads/:thread_id/messages/:message_id", chatHandler.EditMessage)
		chats.POST("/threads/:thread_id/delivered", chatHandler.MarkDelivered)
		chats.POST("/threads/:thread_id/read", chatHandler.MarkRead)
		chats.POST("/threads/:thread_id/pin", chatHandler.PinThread)
		chats.DELETE("/threads/:thread_id/pin", chatHandler.UnpinThread)
	}

	// Message requests (consent gate for non-mutual pairs)
	requests := api.Group("/message-requests", middleware.JWTAuth(jwtManager))
	{
		requests.POST("", requestHandler.Send)
		requests.GET("", requestHandler.ListPending)
		requests.POST("/:request_id/accept", requestHandler.Accept)
		requests.POST("/:request_id/reject", requestHandler.Reject)
		requests.DELETE("/:request_id", requestHandler.Delete)
	}

	// Presence
	presence := api.Group("/presence", middleware.JWTAuth(jwtManager))
	{
		presence.POST("/heartbeat", presenceHandler.Heartbeat)
		presence.POST("/online", presenceHandler.Online)
		presence.POST("/offline", presenceHandler.Offline)
		presence.GET("/:user_id", presenceHandler.Status)
	}

	// Follow graph
	follows := api.Group("/follows", middleware.JWTAuth(jwtManager))
	{
		follows.POST("/:user_id", followHandler.Follow)
		follows.DELETE("/:user_id", followHandler.Unfollow)
		follows.GET("/:user_id/mutual", followHandler.IsMutual)
	}

	// Trending feed
	feed := api.Group("/feed", middleware.JWTAuth(jwtManager))
	{
		feed.GET("/trending", feedHandler.Trending)
		feed.POST("/engagement", feedHandler.RecordEngagement)
	}

	// Notifications
	notifications := api.Group("/notifications", middleware.JWTAuth(jwtManager))
	{
		notifications.GET("", notificationHandler.GetList)
		notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
		notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
		notifications.POST("/:id/read", notificationHandler.MarkAsRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	// WebSocket event stream
	router.GET("/ws/events", middleware.JWTAuth(jwtManager), wsHandler.Connect)
}

package router

import (
	"discuss/internal/handlers"
	"discuss/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, topicHandler *handlers.TopicHandler, postHandler *handlers.PostHandler) {
	// Public Routes
	r.GET("/", topicHandler.List)               // Home - all topics
	r.GET("/topics", topicHandler.List)         // Topic index
	r.GET("/t/:slug", postHandler.ListByTopic)  // Posts in one topic
	r.GET("/p/:pid", postHandler.Detail)        // Post detail with comment thread
	r.GET("/search", postHandler.Search)        // Search posts

	r.GET("/signup", authHandler.ShowSignup)
	r.POST("/signup", authHandler.Signup)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.GET("/auth/google", authHandler.GoogleLogin)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/topics/new", topicHandler.ShowCreate)
		authorized.POST("/topics", topicHandler.Create)

		authorized.GET("/t/:slug/submit", postHandler.ShowCreate)
		authorized.POST("/t/:slug/submit", postHandler.Create)

		authorized.GET("/p/:pid/edit", postHandler.ShowEdit)
		authorized.POST("/p/:pid/edit", postHandler.Update)
		authorized.POST("/p/:pid/delete", postHandler.Delete)

		authorized.POST("/p/:pid/comment", postHandler.CreateComment)
	}
}

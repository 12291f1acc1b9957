package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"laughschool/config"
	"laughschool/handlers"
	"laughschool/middleware"
)

// Setup assembles the router. uploadsDir is served statically under
// /uploads when media lives on local disk; pass "" for Cloudinary.
func Setup(cfg config.Config, h *handlers.Handler, uploadsDir string) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Laugh School API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if uploadsDir != "" {
		router.Static("/uploads", uploadsDir)
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit, cfg.RateWindow)

	// Public routes. Submissions are open to everyone but land unapproved.
	api := router.Group("/api")
	api.Use(middleware.ViewerID())

	api.GET("/posts", h.GetFeed)
	api.GET("/posts/:id", h.GetPost)
	api.POST("/posts/upload", middleware.RateLimit(limiter), h.UploadPost)
	api.POST("/posts/poll", middleware.RateLimit(limiter), h.CreatePoll)
	api.POST("/posts/:id/react", middleware.RateLimit(limiter), h.React)
	api.POST("/posts/:id/vote", middleware.RateLimit(limiter), h.Vote)

	api.POST("/admin/login", middleware.RateLimit(limiter), h.AdminLogin)

	// Admin routes behind the session token.
	admin := router.Group("/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))

	admin.GET("/admin/posts", h.AdminList)
	admin.PATCH("/posts/:id/approval", h.SetApproval)
	admin.PATCH("/posts/:id", h.EditPost)
	admin.POST("/posts/:id/votes/reset", h.ResetVotes)
	admin.DELETE("/posts/:id", h.DeletePost)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
		}
	})

	return router
}

package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/screenpick/screenpick-backend/internal/handlers"
	"github.com/screenpick/screenpick-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	UserHandler           *handlers.UserHandler
	MovieHandler          *handlers.MovieHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Catalog
	protected.GET("/movies", cfg.MovieHandler.ListAll)
	protected.GET("/movies/popular", cfg.MovieHandler.ListPopular)
	protected.GET("/movies/liked", cfg.MovieHandler.ListLiked)
	protected.GET("/movies/disliked", cfg.MovieHandler.ListDisliked)
	protected.GET("/movies/search", cfg.MovieHandler.Search)
	// Preference signals
	protected.POST("/movies/:tmdb_id/like", cfg.MovieHandler.Like)
	protected.POST("/movies/:tmdb_id/dislike", cfg.MovieHandler.Dislike)
	protected.POST("/movies/:tmdb_id/undislike", cfg.MovieHandler.Undislike)
	// Recommendations
	protected.GET("/recommendations", cfg.RecommendationHandler.Recommend)
	protected.POST("/train", cfg.RecommendationHandler.Train)

	return router
}

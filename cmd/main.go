package main

import (
	"fmt"
	"os"
	"time"

	"github.com/screenpick/screenpick-backend/internal/catalog"
	"github.com/screenpick/screenpick-backend/internal/clients/redis"
	"github.com/screenpick/screenpick-backend/internal/db"
	"github.com/screenpick/screenpick-backend/internal/handlers"
	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/middleware"
	"github.com/screenpick/screenpick-backend/internal/recommender"
	"github.com/screenpick/screenpick-backend/internal/repos"
	"github.com/screenpick/screenpick-backend/internal/server"
	"github.com/screenpick/screenpick-backend/internal/services"
	"github.com/screenpick/screenpick-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	movieDataPath := utils.GetEnv("MOVIE_DATA_PATH", "data/catalog.json", log)
	strategy := utils.GetEnv("RECOMMENDER_STRATEGY", "content", log)
	mfFactors := utils.GetEnvAsInt("MF_FACTORS", 32, log)
	mfEpochs := utils.GetEnvAsInt("MF_EPOCHS", 20, log)
	recCacheTTL := utils.GetEnvAsInt("REC_CACHE_TTL", 600, log)

	// Catalog + feature model. A failed or partial load is fatal: the
	// process must not serve traffic without the full catalog.
	log.Info("Loading movie catalog...", "path", movieDataPath)
	cat, err := catalog.Load(movieDataPath, log)
	if err != nil {
		log.Error("Catalog load failed", "error", err)
		os.Exit(1)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	preferenceRepo := repos.NewPreferenceRepo(thePG, log)

	// Engine
	var engine recommender.Engine
	switch strategy {
	case "collaborative":
		engine = recommender.NewFactorizationEngine(cat, log, mfFactors, mfEpochs)
	default:
		engine = recommender.NewContentEngine(cat, log)
	}
	log.Info("Recommendation engine selected", "engine", engine.Name())

	// Optional recommendation cache
	var recCache redis.RecCache
	if cache, cErr := redis.NewRecCache(log, time.Duration(recCacheTTL)*time.Second, cat.Fingerprint()); cErr != nil {
		log.Warn("Recommendation cache disabled", "error", cErr)
	} else {
		recCache = cache
		defer recCache.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	recommendationService := services.NewRecommendationService(thePG, log, cat, engine, preferenceRepo, recCache)
	movieService := services.NewMovieService(thePG, log, cat, preferenceRepo, recommendationService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	movieHandler := handlers.NewMovieHandler(log, movieService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		UserHandler:           userHandler,
		MovieHandler:          movieHandler,
		RecommendationHandler: recommendationHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

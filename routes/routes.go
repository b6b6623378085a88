package routes

import (
	"OcuCare/cache"
	"OcuCare/config"
	"OcuCare/controllers"
	"OcuCare/handlers"
	"OcuCare/middlewares"
	"OcuCare/realtime"
	"OcuCare/repositories"
	"OcuCare/services"
	"OcuCare/storage"
	"OcuCare/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, blobs *storage.MinIOClient, broker *realtime.Broker) http.Handler {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	// Create a Gin router
	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	// Create and apply CORS middleware configuration
	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "https://ocucare.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	// Apply rate limiter middleware
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15, // 15 requests per second
		Burst:             30, // Burst of 30
	}))

	// Apply logging middleware
	router.Use(middlewares.LoggingMiddleware())

	// Initialize repositories, services, and handlers
	userRepo := repositories.NewUserRepository(cache)
	resultRepo := repositories.NewResultRepository(cache)
	conversationRepo := repositories.NewConversationRepository(cache)
	callRepo := repositories.NewCallRepository()

	userService := services.NewUserService(userRepo, utils.DefaultRetryPolicy())
	resultService := services.NewResultService(resultRepo, blobs)
	consultationService := services.NewConsultationService(
		conversationRepo,
		resultRepo,
		userRepo,
		broker,
		services.NewEmailNotifier(),
	)
	callService := services.NewCallService(callRepo, broker)
	classifierService := services.NewClassifierService(config.GetClassifierEndpoint())

	authHandler := handlers.NewAuthHandler(userService)
	resultHandler := handlers.NewResultHandler(resultService, classifierService)
	consultationHandler := handlers.NewConsultationHandler(consultationService, resultService, broker)
	callHandler := handlers.NewCallHandler(callService, userService, broker)

	// Register routes
	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router)

	controllers.SetupConsultationRoutes(router, resultHandler, consultationHandler, callHandler)

	controllers.SetupRootRoute(router)

	return router
}

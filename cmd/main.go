package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"rentora/internal/caching"
	"rentora/internal/handlers"
	"rentora/internal/jobs/background"
	"rentora/internal/middleware"
	"rentora/internal/repositories"
	"rentora/internal/services"
	"rentora/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000" // Default MinIO endpoint
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	propertyRepo := repositories.NewPropertyRepo(pool)
	requestRepo := repositories.NewRentalRequestRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	rentalRepo := repositories.NewRentalRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	notificationSvc := services.NewNotificationService(notificationRepo, userRepo, cacheSvc)
	requestSvc := services.NewRequestService(requestRepo, propertyRepo, userRepo, notificationSvc, cacheSvc)
	rentalSvc := services.NewRentalService(rentalRepo, propertyRepo, minioSvc)
	propertySvc := services.NewPropertyService(propertyRepo, cacheSvc)

	// Create handlers
	requestHandlers := handlers.NewRequestHandlers(requestSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	rentalHandlers := handlers.NewRentalHandlers(rentalSvc)
	propertyHandlers := handlers.NewPropertyHandlers(propertySvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(requestSvc, cacheSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()
	jobHandlers := handlers.NewJobHandlers(scheduler)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// Protected routes
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	v1.Use(middleware.JWTMiddleware(userRepo, jwtSecret))

	// Request lifecycle routes
	v1.POST("/requests", requestHandlers.CreateRequest)
	v1.GET("/requests", requestHandlers.ListMyRequests)
	v1.GET("/requests/interested", requestHandlers.ListInterested)
	v1.POST("/requests/:id/accept", requestHandlers.AcceptRequest)
	v1.POST("/requests/:id/reject", requestHandlers.RejectRequest)

	// Notification routes
	v1.GET("/notifications/unread", notificationHandlers.GetUnread)
	v1.PUT("/notifications/:id/read", notificationHandlers.MarkAsRead)
	v1.POST("/notifications/send", notificationHandlers.Send)

	// Rental routes
	v1.GET("/rentals", rentalHandlers.ListMyRentals)
	v1.GET("/rentals/:id", rentalHandlers.GetRental)
	v1.POST("/rentals/:id/contract", rentalHandlers.UploadContract)
	v1.GET("/rentals/:id/contract", rentalHandlers.GetContract)

	// Property routes
	v1.GET("/properties", propertyHandlers.ListProperties)
	v1.POST("/properties", propertyHandlers.CreateProperty)
	v1.GET("/properties/:id", propertyHandlers.GetProperty)
	v1.PUT("/properties/:id/availability", propertyHandlers.SetAvailability)

	// Operator routes
	v1.GET("/jobs/status", jobHandlers.GetJobStatus)

	// Contract bucket has to exist before the first upload
	if err := minioSvc.EnsureBucketExists(context.Background(), "contracts"); err != nil {
		log.Printf("WARNING: Could not ensure contracts bucket: %v", err)
	}

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Rentora server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

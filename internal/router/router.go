package router

import (
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/velora/backend/internal/handlers"
	"github.com/velora/backend/internal/middleware"
	"github.com/velora/backend/internal/realtime"
	"github.com/velora/backend/internal/repositories"
	"github.com/velora/backend/internal/storage"
	"github.com/velora/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware and the error envelope
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			log.Printf("%s %s -> %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.HTTPErrorHandler = httpErrorHandler
	log.Println("Global middleware configured.")
}

// httpErrorHandler renders every error as {"success": false, "message": ...}
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"success": false, "message": message})
	}
	if err != nil {
		log.Printf("error handler failed: %v", err)
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	db *config.DB,
	firebaseAuthClient *auth.Client,
	mediaStore storage.MediaStore,
	hub *realtime.Hub,
) {
	mgdb := db.Mongo.Database(cfg.MongoDatabase)

	// Health check - always accessible
	healthHandler := handlers.NewHealthHandler(db)
	e.GET("/api/health", healthHandler.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mgdb)
	postRepo := repositories.NewMongoPostRepository(mgdb)
	reelRepo := repositories.NewMongoReelRepository(mgdb)
	messageRepo := repositories.NewMongoMessageRepository(mgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgdb)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(userRepo, postRepo, reelRepo, notificationRepo, mediaStore)
	e.GET("/api/users/search", userHandler.SearchUsers)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api group.")

	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, notificationRepo, mediaStore)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	reelHandler := handlers.NewReelHandler(reelRepo, userRepo, notificationRepo, mediaStore)
	reelHandler.RegisterReelRoutes(api)
	log.Println("Reel routes configured.")

	chatHandler := handlers.NewChatHandler(messageRepo, userRepo)
	chatHandler.RegisterChatRoutes(api)
	log.Println("Chat routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Realtime gateway: identity is claimed via the join event, not the JWT
	// middleware, so the endpoint sits outside the protected group.
	e.GET("/ws", realtime.ServeWS(hub))
	log.Println("Realtime gateway configured.")

	log.Println("All routes configured.")
}

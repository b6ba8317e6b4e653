package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/velora/backend/internal/realtime"
	"github.com/velora/backend/internal/router"
	"github.com/velora/backend/internal/storage"
	"github.com/velora/backend/pkg/config"
	"github.com/velora/backend/pkg/firebase"
	"github.com/velora/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize object storage
	mediaStore, err := storage.NewMinioMediaStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Initialize Firebase. Social login is optional: without credentials the
	// endpoint reports itself unavailable and everything else still works.
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("Firebase init failed, social login disabled: %v", err)
		} else {
			firebaseAuthClient = firebaseApp.AuthClient
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, social login disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Realtime hub for live chat delivery
	hub := realtime.NewHub()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db, firebaseAuthClient, mediaStore, hub)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

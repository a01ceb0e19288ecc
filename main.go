package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdfdock/pdfdock/api/database"
	"github.com/pdfdock/pdfdock/api/handlers"
)

func main() {
	development := os.Getenv("PDFDOCK_ENV") != "production"
	handlers.InitLogger(development)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(handlers.RequestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Cache-Control", "Content-Type"},
	}))

	// Database connection
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/data/uploads"
	}
	store, err := handlers.NewFileStore(uploadDir)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5173"
	}

	// Create handlers
	h := handlers.NewHandler(db)
	authHandler := handlers.NewAuthHandler(db)
	pdfHandler := handlers.NewPDFHandler(db, store, baseURL)
	sharedHandler := handlers.NewSharedHandler(db)

	// The auth filter establishes identity and never rejects; the gate makes
	// the reject decision. Both consult the same public-route table.
	e.Use(authHandler.AuthFilter)
	e.Use(authHandler.RequireAuth)

	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")

	// Auth routes (public)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Current principal (protected)
	api.GET("/me", authHandler.Profile)

	// PDF routes
	api.POST("/pdf/upload", pdfHandler.Upload)
	api.GET("/pdf/my-files", pdfHandler.MyFiles)
	api.GET("/pdf/my-files/search", pdfHandler.SearchMyFiles)
	api.GET("/pdf/search", pdfHandler.Search) // public
	api.GET("/pdf/download/:id", pdfHandler.Download)
	api.GET("/pdf/:id", pdfHandler.Details)
	api.POST("/pdf/:id/comments", pdfHandler.AddComment)
	api.POST("/pdf/:id/share", pdfHandler.SharePdf)

	// Share routes (generate is protected; the rest are capability-token access)
	api.POST("/shared/generate/:pdfId", sharedHandler.Generate)
	api.GET("/shared/access/:shareToken", sharedHandler.Access)
	api.GET("/shared/download/:shareToken", sharedHandler.Download)
	api.GET("/shared/view/:shareToken", sharedHandler.View)
	api.POST("/shared/:shareToken/comments", sharedHandler.GuestComment)

	// Get port from environment or default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s (version %s)", port, Version)
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func corsOrigins() []string {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		return []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	return strings.Split(origins, ",")
}

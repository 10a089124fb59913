package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/config"
	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/handlers"
	admin_handlers "github.com/nstclasses/tutor-api/handlers/admin"
	auth_handlers "github.com/nstclasses/tutor-api/handlers/auth"
	chat_handlers "github.com/nstclasses/tutor-api/handlers/chat"
	syllabus_handlers "github.com/nstclasses/tutor-api/handlers/syllabus"
	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/services"
	"github.com/nstclasses/tutor-api/utils/auth"
	"github.com/nstclasses/tutor-api/utils/middleware"
)

// SetupRoutes wires every handler onto the fiber app
func SetupRoutes(app *fiber.App, store database.Storage, live livestore.Store, remote *database.RemoteStore) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment: ", err)
	}
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "tutor-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	chatService := services.NewChatService(live, remote)
	syllabusService := services.NewSyllabusService(db)
	settingsService := services.NewSettingsService(remote)
	userService := services.NewUserService(db, remote)

	// Handlers
	healthHandler := handlers.NewHealthHandler(store, live)
	authHandler := auth_handlers.NewAuthHandler(db, remote, jwtManager)
	chatHandler := chat_handlers.NewChatHandler(chatService, remote, live)
	syllabusHandler := syllabus_handlers.NewSyllabusHandler(syllabusService)
	adminHandler := admin_handlers.NewAdminHandler(db, settingsService, userService)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Check)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/presence", authMiddleware.Required(), authHandler.Presence)

	// Chat routes (protected)
	chatGroup := api.Group("/chat", authMiddleware.Required())
	chatGroup.Post("/messages", chatHandler.Send)
	chatGroup.Get("/messages", chatHandler.History)
	chatGroup.Patch("/messages/:id", chatHandler.Edit)
	chatGroup.Delete("/messages/:id", chatHandler.Delete)
	chatGroup.Get("/stream", chatHandler.Stream)
	chatGroup.Get("/sessions", middleware.RequireAdmin(), chatHandler.Sessions)

	// Syllabus routes (protected; overrides are admin only)
	syllabusGroup := api.Group("/syllabus", authMiddleware.Required())
	syllabusGroup.Get("/", syllabusHandler.GetPlan)
	syllabusGroup.Put("/:classLevel", middleware.RequireAdmin(), syllabusHandler.SaveOverride)
	syllabusGroup.Delete("/:classLevel", middleware.RequireAdmin(), syllabusHandler.DeleteOverride)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	adminGroup.Get("/settings", adminHandler.GetSettings)
	adminGroup.Put("/settings", adminHandler.UpdateSettings)
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Get("/users/:id", adminHandler.GetUser)
	adminGroup.Patch("/users/:id/ban", adminHandler.SetChatBan)
	adminGroup.Patch("/users/:id/credits", adminHandler.AdjustCredits)
	adminGroup.Patch("/users/:id/subscription", adminHandler.SetSubscription)
	adminGroup.Patch("/users/:id/progress", adminHandler.UpdateProgress)
	adminGroup.Patch("/users/:id/enrollment", adminHandler.SetEnrollmentDate)
	adminGroup.Get("/cron-logs", adminHandler.ListCronLogs)
}

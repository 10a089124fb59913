package app

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/api"
	"github.com/nstclasses/tutor-api/config"
	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/router"
	"github.com/nstclasses/tutor-api/services"
	"github.com/nstclasses/tutor-api/services/cron"
)

// SetupAndRunServer boots the whole service: env, document store, live tree,
// seeding, cron jobs, routes
func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get GORM DB instance")
	}

	// Seed admin user and default settings
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// Live tree store: Redis-backed, falling back to in-memory when Redis is
	// unreachable. The in-memory store loses data on restart and does not fan
	// out across instances; fine for development only.
	var live livestore.Store
	live, err = livestore.NewRedisStore(getEnv.REDIS_URL)
	if err != nil {
		log.Printf("Warning: Redis unavailable (%v), using in-memory live store", err)
		live = livestore.NewMemoryStore()
	}

	remote := database.NewRemoteStore(live, store)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.Manager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		chatService := services.NewChatService(live, remote)
		cronManager = cron.NewManager(db, chatService, remote)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	// Defer Closing DB, live store and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if err := live.Close(); err != nil {
			log.Printf("Warning: live store close failed: %v", err)
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), store, live)
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, live, remote)

	// Get the PORT & Start the Server
	return server.Run()
}

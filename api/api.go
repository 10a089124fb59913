package api

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/livestore"
)

// APIServer wraps the fiber engine together with the two stores it serves
type APIServer struct {
	app           *fiber.App
	listenAddress string
	store         database.Storage
	live          livestore.Store
}

// NewAPIServer creates the server without starting it
func NewAPIServer(listenAddress string, store database.Storage, live livestore.Store) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName: "tutor-api",
		}),
		listenAddress: listenAddress,
		store:         store,
		live:          live,
	}
}

// GetEngine returns the underlying fiber app for route registration
func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run starts listening; blocks until shutdown
func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown gracefully stops the server
func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

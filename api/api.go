package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/handlers/media"
	"go.uber.org/zap"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "IG Thar Village API",
			BodyLimit:    media.BodyLimit,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	zap.S().Infof("Starting API Server, listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

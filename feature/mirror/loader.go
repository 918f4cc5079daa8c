package mirror

import (
	"time"

	"listing-mirror/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new mirror feature.
func NewFeature(client storage.Client, bucket string, src Source, cfg Config, timeout time.Duration, logger *zap.Logger) *Feature {
	svc := NewService(client, bucket, src, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc, timeout)}
}

// Service returns the feature's mirror service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mirror"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

package feed

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates a new feed feature. It is disabled when no feed URL is configured.
func NewFeature(service *Service) *Feature {
	return &Feature{
		service: service,
		handler: NewHandler(service),
		enabled: service.cfg.URL != "",
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "feed"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

package history

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface. It is disabled without a repository.
type Feature struct {
	repo    *Repository
	handler *Handler
}

// NewFeature creates a new history feature. repo may be nil.
func NewFeature(repo *Repository, logger *zap.Logger) *Feature {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feature{repo: repo, handler: NewHandler(repo, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "history"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.repo != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

package feed

import (
	"listing-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the data feed.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the feed routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Group("/feed").Post("/sync", h.HandleSync)
}

// HandleSync refreshes the stored feed document.
// @Summary Refresh Data Feed
// @Description Downloads the population JSON feed, stores it in the bucket and publishes a notification.
// @Tags feed
// @Produce json
// @Success 200 {object} Result
// @Failure 502 {object} map[string]interface{} "Stored but notification failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /feed/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering feed sync")

	result, err := h.service.Sync(c.UserContext())
	if err != nil && result != nil {
		l.Error("Feed notification failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"result": result, "error": err.Error()})
	}
	if err != nil {
		l.Error("Feed sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

package history

import (
	"errors"

	"listing-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for run history.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/history")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
}

// HandleList returns recent runs.
// @Summary List Mirror Runs
// @Description Returns the most recent applied runs, newest first, without per-item detail.
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} RunRecord
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /history [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	runs, err := h.repo.List(c.UserContext(), c.QueryInt("limit", DefaultLimit))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandleGet returns one run with its items.
// @Summary Get Mirror Run
// @Description Returns a run with every attempted action in plan order.
// @Tags history
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunRecord
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /history/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	run, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to load run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(run)
}

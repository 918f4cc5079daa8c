package mirror

import (
	"context"
	"errors"
	"time"

	"listing-mirror/core/logger"
	"listing-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for mirror runs.
type Handler struct {
	service *Service
	timeout time.Duration
}

// NewHandler creates a new HTTP handler. Runs triggered over HTTP are
// bounded by timeout.
func NewHandler(service *Service, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Handler{service: service, timeout: timeout}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Get("/plan", h.HandlePlan)
	group.Post("/sync", h.HandleSync)
	group.Post("/index", h.HandleIndex)
}

// HandlePlan computes the pending plan without applying it.
// @Summary Preview Mirror Plan
// @Description Reads the upstream listing and the bucket, and returns the deletes and uploads a sync would perform.
// @Tags mirror
// @Produce json
// @Success 200 {object} Run
// @Failure 422 {object} map[string]string "Unusable listing"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Computing mirror plan")

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	run, err := h.service.Plan(ctx)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(run)
}

// HandleSync runs one mirror pass.
// @Summary Run Mirror Sync
// @Description Applies the plan: withdrawn and changed objects are deleted, then new and changed files are uploaded. Concurrent requests join the running pass.
// @Tags mirror
// @Produce json
// @Param dry_run query bool false "Compute the plan only"
// @Param allow_teardown query bool false "Allow an empty listing to empty the mirror"
// @Param concurrency query int false "Override action concurrency"
// @Success 200 {object} Run
// @Failure 409 {object} Run "Teardown refused"
// @Failure 422 {object} map[string]string "Unusable listing"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	opts := SyncOptions{
		DryRun:        c.QueryBool("dry_run", false),
		AllowTeardown: c.QueryBool("allow_teardown", false),
		Concurrency:   c.QueryInt("concurrency", 0),
	}
	l.Info("Triggering mirror sync",
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("allow_teardown", opts.AllowTeardown))

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	run, err := h.service.Sync(ctx, opts)
	if errors.Is(err, ErrTeardownRefused) {
		return c.Status(fiber.StatusConflict).JSON(run)
	}
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(run)
}

// HandleIndex regenerates the index page.
// @Summary Rebuild Index Page
// @Description Writes an HTML page under the mirror prefix linking every object through a presigned URL.
// @Tags mirror
// @Produce json
// @Success 200 {object} IndexResult
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/index [post]
func (h *Handler) HandleIndex(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Rebuilding mirror index")

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	result, err := h.service.RebuildIndex(ctx)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(result)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, reconcile.ErrInvalidInput) {
		status = fiber.StatusUnprocessableEntity
	}
	l.Error("Mirror request failed", zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

package integrity

import (
	"listing-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/documents", h.HandleDocumentsCheck)
	group.Get("/metadata", h.HandleMetadataCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Structure, Documents, Metadata).
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]interface{})

	if missing, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = map[string]interface{}{"status": "ok", "missing": missing}
	}

	if missing, err := h.service.CheckDocuments(ctx); err != nil {
		report["documents"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["documents"] = map[string]interface{}{"status": "ok", "missing": missing}
	}

	if meta, err := h.service.CheckMetadata(ctx); err != nil {
		report["metadata"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["metadata"] = meta
	}

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks that the mirror and feed folders exist in the storage bucket. Optionally creates missing folder markers.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckStructure(c.UserContext())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(c.UserContext(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleDocumentsCheck checks the index page and feed document.
// @Summary Check Documents
// @Description Verify that the index page and the feed document are present.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Documents Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/documents [get]
func (h *Handler) HandleDocumentsCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	missing, err := h.service.CheckDocuments(c.UserContext())
	if err != nil {
		l.Error("Documents check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleMetadataCheck lists mirrored objects without comparison metadata.
// @Summary Check Object Metadata
// @Description Lists mirrored objects missing source size or source timestamp metadata; they are replaced on the next sync.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.MetadataReport "Metadata Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/metadata [get]
func (h *Handler) HandleMetadataCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting metadata check")

	report, err := h.service.CheckMetadata(c.UserContext())
	if err != nil {
		l.Error("Metadata check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Metadata check completed",
		zap.Int("checked", report.Checked),
		zap.Int("missing_size", len(report.MissingSize)),
		zap.Int("missing_last_modified", len(report.MissingLastModified)))

	return c.JSON(report)
}

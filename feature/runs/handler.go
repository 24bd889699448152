package runs

import (
	"errors"

	"datarecon/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the runs routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Post("/", h.HandleLaunchRun)
	group.Get("/", h.HandleListRuns)
	group.Get("/:id", h.HandleGetRun)
	group.Get("/:id/report", h.HandleGetReport)
	group.Delete("/:id", h.HandleCancelRun)
}

// HandleLaunchRun starts a new reconciliation run in the background.
func (h *Handler) HandleLaunchRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	run, err := h.service.Launch()
	if err != nil {
		if errors.Is(err, ErrRunActive) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Run launch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Run launched", zap.String("run_id", run.ID))
	return c.Status(fiber.StatusAccepted).JSON(run)
}

// HandleListRuns returns all runs in launch order.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleGetRun returns the state of a single run.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.service.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}

// HandleGetReport returns the reconciliation report of a finished run.
// Until the run finishes the report does not exist yet.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	rep, err := h.service.Report(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(rep)
}

// HandleCancelRun aborts an in-flight run at its next batch boundary.
func (h *Handler) HandleCancelRun(c *fiber.Ctx) error {
	if err := h.service.Cancel(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

package inventory

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"inventory-reconciler/core/logger"
	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/feature/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	service *Service
	logger  *zap.Logger
	timeout time.Duration
}

// NewHandler creates a new HTTP handler. A zero timeout leaves requests unbounded.
func NewHandler(service *Service, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger, timeout: timeout}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inventory")
	group.Get("/reconcile", h.HandleReconcile)
	group.Get("/reconcile.csv", h.HandleReconcileCSV)
	group.Get("/comparisons", h.HandleComparisons)
	group.Get("/history", h.HandleHistory)
	group.Get("/reports", h.HandleReports)
}

// ReconcileResponse is the JSON body of a reconciliation.
type ReconcileResponse struct {
	*reconcile.Result
	Complete bool              `json:"complete"`
	Summary  reconcile.Summary `json:"summary"`
}

// HandleReconcile runs a reconciliation and returns it as JSON.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	result, status, err := h.reconcile(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(status).JSON(ReconcileResponse{
		Result:   result,
		Complete: result.Complete(),
		Summary:  result.Summary(),
	})
}

// HandleReconcileCSV runs a reconciliation and returns the CSV report.
func (h *Handler) HandleReconcileCSV(c *fiber.Ctx) error {
	result, status, err := h.reconcile(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	if status != fiber.StatusOK {
		return c.Status(status).JSON(fiber.Map{
			"error":   "every comparison is indeterminate",
			"details": result.Indeterminate().Error(),
		})
	}

	data, err := report.EncodeCSV(result)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(path.Base(report.ObjectName(result)))
	if !result.Complete() {
		c.Set("X-Reconcile-Indeterminate", "true")
	}
	return c.Send(data)
}

// reconcile runs the request's reconciliation and picks the response status.
func (h *Handler) reconcile(c *fiber.Ctx) (*reconcile.Result, int, error) {
	l := logger.WithRayID(h.logger, c)
	org := strings.TrimSpace(c.Query("organization"))

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	l.Info("Reconciliation requested", zap.String("organization", org))
	result, err := h.service.Reconcile(ctx, org)
	if err != nil {
		if errors.Is(err, reconcile.ErrEmptyOrganization) {
			return nil, fiber.StatusBadRequest, err
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			l.Warn("Reconciliation did not finish in time", zap.Error(err))
			return nil, fiber.StatusGatewayTimeout, err
		}
		l.Error("Reconciliation failed", zap.Error(err))
		return nil, fiber.StatusInternalServerError, err
	}

	return result, ResponseStatus(result), nil
}

// ResponseStatus returns 502 when no comparison could be computed, 200 otherwise.
func ResponseStatus(result *reconcile.Result) int {
	if len(result.Comparisons) > 0 && result.Summary().Indeterminate == len(result.Comparisons) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusOK
}

// HandleComparisons lists the configured comparisons.
func (h *Handler) HandleComparisons(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"comparisons": h.service.Comparisons()})
}

// HandleHistory lists past runs of an organization.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	org := strings.TrimSpace(c.Query("organization"))
	if org == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reconcile.ErrEmptyOrganization.Error()})
	}

	runs, err := h.service.History(c.UserContext(), org, c.QueryInt("limit", 20))
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(fiber.Map{"organization": org, "runs": runs})
}

// HandleReports lists the uploaded reports of an organization.
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	org := strings.TrimSpace(c.Query("organization"))
	if org == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reconcile.ErrEmptyOrganization.Error()})
	}

	objects, err := h.service.Reports(c.UserContext(), org)
	if err != nil {
		return h.lookupError(c, err)
	}

	reports := make([]fiber.Map, 0, len(objects))
	for _, obj := range objects {
		reports = append(reports, fiber.Map{
			"key":           obj.Key,
			"size":          obj.Size,
			"last_modified": obj.LastModified,
		})
	}
	return c.JSON(fiber.Map{"organization": org, "reports": reports})
}

func (h *Handler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrHistoryDisabled) || errors.Is(err, ErrReportsDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.logger, c).Error("Lookup failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

package inventory

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature plugs the inventory routes into the loader.
type Feature struct {
	service *Service
	logger  *zap.Logger
	timeout time.Duration
}

// NewFeature creates the inventory feature. A nil service disables it.
func NewFeature(service *Service, logger *zap.Logger, timeout time.Duration) *Feature {
	return &Feature{service: service, logger: logger, timeout: timeout}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled reports whether a service is configured.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.logger, f.timeout).RegisterRoutes(app)
	return nil
}

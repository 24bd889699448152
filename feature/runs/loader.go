package runs

import (
	"datarecon/core/recon"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Runs feature.
func NewFeature(logger *zap.Logger, opts recon.Options, newStore StoreBuilder, buildSources SourceBuilder) *Feature {
	svc := NewService(logger, opts, newStore, buildSources)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// SetArchiver enables report archival for finished runs.
func (f *Feature) SetArchiver(a Archiver) {
	f.service.SetArchiver(a)
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "runs"
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

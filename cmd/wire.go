package cmd

import (
	"fmt"
	"time"

	"inventory-reconciler/core/config"
	"inventory-reconciler/core/credentials"
	"inventory-reconciler/core/database"
	"inventory-reconciler/core/logger"
	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/storage"
	"inventory-reconciler/core/transport"
	"inventory-reconciler/feature/directory"
	"inventory-reconciler/feature/edr"
	"inventory-reconciler/feature/report"
	"inventory-reconciler/feature/rmm"

	"go.uber.org/zap"
)

// bootstrap loads the configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// buildAdapters creates one adapter per configured source.
func buildAdapters(cfg *config.Config, l *zap.Logger) ([]reconcile.Adapter, error) {
	provider, err := credentials.NewProvider(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential provider: %w", err)
	}

	var adapters []reconcile.Adapter

	if cfg.Directory.Enabled() {
		adapters = append(adapters, directory.NewAdapter(cfg.Directory, nil, provider, l))
	} else {
		l.Debug("Directory source not configured")
	}

	if cfg.RMM.Enabled() {
		client := transport.NewHTTPClient(cfg.Transport, transport.NewLimiter(cfg.RMM.RequestsPerMinute))
		adapters = append(adapters, rmm.NewAdapter(cfg.RMM, client, provider, l))
	} else {
		l.Debug("RMM source not configured")
	}

	if cfg.EDR.Enabled() {
		client := transport.NewHTTPClient(cfg.Transport, transport.NewLimiter(cfg.EDR.RequestsPerMinute))
		adapters = append(adapters, edr.NewAdapter(cfg.EDR, client, provider, l))
	} else {
		l.Debug("Endpoint-protection source not configured")
	}

	return adapters, nil
}

// buildSpec assembles the run spec, letting non-empty overrides win over the configuration.
func buildSpec(cfg *config.Config, l *zap.Logger, comparisons string, timeout time.Duration) (*reconcile.Spec, error) {
	adapters, err := buildAdapters(cfg, l)
	if err != nil {
		return nil, err
	}

	rc := cfg.Reconcile
	if comparisons != "" {
		rc.Comparisons = comparisons
	}

	spec, err := reconcile.NewSpec(rc, adapters...)
	if err != nil {
		return nil, fmt.Errorf("invalid reconciliation setup: %w", err)
	}
	// The flag keeps sub-second precision
	if timeout > 0 {
		spec.Timeout = timeout
	}
	return spec, nil
}

// openHistory connects to the report database and migrates it.
func openHistory(cfg *config.Config) (*report.DatabaseSink, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	sink := report.NewDatabaseSink(db)
	if err := sink.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate report tables: %w", err)
	}
	return sink, nil
}

// openReports creates the object-storage report sink.
func openReports(cfg *config.Config, l *zap.Logger) (*report.StorageSink, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return report.NewStorageSink(client, cfg.Storage.Bucket, cfg.Storage.Region, l), nil
}

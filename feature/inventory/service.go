package inventory

import (
	"context"
	"errors"

	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/feature/report"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrHistoryDisabled is returned when no report database is configured.
	ErrHistoryDisabled = errors.New("run history is not enabled")
	// ErrReportsDisabled is returned when no report storage is configured.
	ErrReportsDisabled = errors.New("report storage is not enabled")
)

// Service runs reconciliations and records each run in the configured sinks.
type Service struct {
	runner  *reconcile.Runner
	sink    report.MultiSink
	history *report.DatabaseSink
	reports *report.StorageSink
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHistory persists every run and serves it back through History.
func WithHistory(db *report.DatabaseSink) Option {
	return func(s *Service) {
		s.history = db
		s.sink = append(s.sink, db)
	}
}

// WithReports uploads every run and lists uploads through Reports.
func WithReports(store *report.StorageSink) Option {
	return func(s *Service) {
		s.reports = store
		s.sink = append(s.sink, store)
	}
}

// NewService creates a new inventory service for spec.
func NewService(spec *reconcile.Spec, logger *zap.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	runner, err := reconcile.NewRunner(spec, logger, s.record)
	if err != nil {
		return nil, err
	}
	s.runner = runner
	return s, nil
}

// Reconcile runs a reconciliation for organization.
func (s *Service) Reconcile(ctx context.Context, organization string) (*reconcile.Result, error) {
	return s.runner.Run(ctx, organization)
}

// record writes a finished run to the sinks. Sink failures never fail the run.
func (s *Service) record(ctx context.Context, result *reconcile.Result) {
	if err := s.sink.Write(ctx, result); err != nil {
		s.logger.Warn("Failed to record run",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
	}
}

// Comparisons returns the configured comparison set.
func (s *Service) Comparisons() []reconcile.Comparison {
	return s.runner.Comparisons()
}

// History returns past runs of organization.
func (s *Service) History(ctx context.Context, organization string, limit int) ([]report.RunRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.History(ctx, organization, limit)
}

// Reports lists the uploaded reports of organization.
func (s *Service) Reports(ctx context.Context, organization string) ([]minio.ObjectInfo, error) {
	if s.reports == nil {
		return nil, ErrReportsDisabled
	}
	return s.reports.List(ctx, organization)
}

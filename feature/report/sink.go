package report

import (
	"context"
	"errors"
	"fmt"

	"inventory-reconciler/core/reconcile"
)

// Sink consumes a finished reconciliation result.
type Sink interface {
	Write(ctx context.Context, result *reconcile.Result) error
}

// MultiSink writes a result to every sink, even when some of them fail.
type MultiSink []Sink

// Write implements Sink. The returned error joins every sink failure.
func (m MultiSink) Write(ctx context.Context, result *reconcile.Result) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, result); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

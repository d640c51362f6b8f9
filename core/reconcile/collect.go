package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Spec defines the configuration for a reconciliation run.
// It bundles the adapters, the comparison set and the per-source timeout.
type Spec struct {
	// Adapters provides one adapter per source of record.
	Adapters map[SourceKind]Adapter

	// Comparisons is the set of differences to compute.
	// If empty, DefaultComparisons is used.
	Comparisons []Comparison

	// Timeout bounds each adapter call. If zero, only the caller's context applies.
	Timeout time.Duration
}

// comparisons returns the configured comparisons or the defaults.
func (s *Spec) comparisons() []Comparison {
	if len(s.Comparisons) == 0 {
		return DefaultComparisons()
	}
	return s.Comparisons
}

// Validate checks that every comparison references a configured adapter.
func (s *Spec) Validate() error {
	for _, c := range s.comparisons() {
		for _, kind := range []SourceKind{c.Source, c.Against} {
			adapter, ok := s.Adapters[kind]
			if !ok || adapter == nil {
				return fmt.Errorf("comparison %s: %w: %s", c.Name, ErrNoAdapter, kind)
			}
			if adapter.Kind() != kind {
				return fmt.Errorf("adapter %s registered as %s but collects %s", adapter.Name(), kind, adapter.Kind())
			}
		}
		if c.Source == c.Against {
			return fmt.Errorf("comparison %s compares %s with itself", c.Name, c.Source)
		}
	}
	return nil
}

// requiredSources returns the sources referenced by the comparisons, in AllSources order.
func (s *Spec) requiredSources() []SourceKind {
	needed := make(map[SourceKind]bool)
	for _, c := range s.comparisons() {
		needed[c.Source] = true
		needed[c.Against] = true
	}
	kinds := make([]SourceKind, 0, len(needed))
	for _, kind := range AllSources {
		if needed[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Collect runs every adapter required by the comparisons concurrently and captures
// each outcome. Adapters are independent; a failure in one never affects the others.
// Cancelling ctx cancels every in-flight adapter call.
func Collect(ctx context.Context, spec *Spec, organization string) Snapshot {
	kinds := spec.requiredSources()
	outcomes := make([]Outcome, len(kinds))

	var wg sync.WaitGroup
	wg.Add(len(kinds))
	for i, kind := range kinds {
		go func(i int, kind SourceKind) {
			defer wg.Done()
			outcomes[i] = collectOne(ctx, spec, kind, organization)
		}(i, kind)
	}
	wg.Wait()

	snapshot := Snapshot{
		Organization: organization,
		Outcomes:     make(map[SourceKind]Outcome, len(kinds)),
	}
	for i, kind := range kinds {
		snapshot.Outcomes[kind] = outcomes[i]
	}
	return snapshot
}

// collectOne loads a single source under the configured timeout.
func collectOne(ctx context.Context, spec *Spec, kind SourceKind, organization string) Outcome {
	adapter, ok := spec.Adapters[kind]
	if !ok || adapter == nil {
		return Failed(&SourceError{Source: kind, Err: ErrNoAdapter})
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	start := time.Now()
	inv, err := adapter.LoadInventory(ctx, organization)
	fetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err == nil && inv == nil {
		err = fmt.Errorf("%w: adapter returned no inventory", ErrTransport)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && Classify(err) == KindUnknown {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		fetchFailures.WithLabelValues(string(kind), Classify(err)).Inc()
		return Failed(&SourceError{Source: kind, Err: err})
	}

	devicesCollected.WithLabelValues(string(kind)).Set(float64(len(inv.Hosts)))
	return Ok(inv)
}

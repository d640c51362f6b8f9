package reconcile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Hook is called once per completed run, before the result is handed to callers.
type Hook func(ctx context.Context, result *Result)

// Runner collects and reconciles inventories for one organization at a time.
// Concurrent runs for the same organization share a single in-flight collection;
// nothing is retained once a run returns.
type Runner struct {
	spec   *Spec
	logger *zap.Logger
	hooks  []Hook
	sf     singleflight.Group
	now    func() time.Time

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one shared run. It is cancelled once every caller
// waiting on it has given up, never by a single caller.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewRunner validates spec and returns a Runner. Hooks run once per run even
// when several callers share it.
func NewRunner(spec *Spec, logger *zap.Logger, hooks ...Hook) (*Runner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		spec:    spec,
		logger:  logger,
		hooks:   hooks,
		now:     time.Now,
		flights: make(map[string]*flight),
	}, nil
}

// Comparisons returns the comparison set the runner computes.
func (r *Runner) Comparisons() []Comparison {
	return r.spec.comparisons()
}

// Run collects every required source for organization and reconciles them.
// Failed sources never fail the run: the affected comparisons are reported as
// indeterminate in the result. Run returns an error for invalid input, or the
// context error when ctx ends before the run completes. A caller leaving early
// does not affect other callers sharing the run.
func (r *Runner) Run(ctx context.Context, organization string) (*Result, error) {
	org := strings.TrimSpace(organization)
	if org == "" {
		return nil, ErrEmptyOrganization
	}

	// Organization matching is case-insensitive in every source
	key := strings.ToUpper(org)

	r.mu.Lock()
	f, ok := r.flights[key]
	if !ok {
		workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: workCtx, cancel: cancel}
		r.flights[key] = f
	}
	f.waiters++
	ch := r.sf.DoChan(key, func() (interface{}, error) {
		return r.run(f.ctx, org), nil
	})
	r.mu.Unlock()

	select {
	case res := <-ch:
		r.leave(key, f, false)
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("Joined in-flight reconciliation", zap.String("organization", org))
		}
		return res.Val.(*Result), nil
	case <-ctx.Done():
		r.leave(key, f, true)
		r.logger.Debug("Caller left reconciliation", zap.String("organization", org), zap.Error(ctx.Err()))
		return nil, ctx.Err()
	}
}

// leave releases one waiter. The last waiter to leave an abandoned flight
// cancels it so the next caller starts a fresh run.
func (r *Runner) leave(key string, f *flight, abandoned bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	if r.flights[key] == f {
		delete(r.flights, key)
		if abandoned {
			r.sf.Forget(key)
		}
	}
	f.cancel()
}

func (r *Runner) run(ctx context.Context, org string) *Result {
	log := r.logger.With(zap.String("organization", org))
	log.Info("Collecting inventories", zap.Int("comparisons", len(r.spec.comparisons())))

	snapshot := Collect(ctx, r.spec, org)
	for kind, outcome := range snapshot.Outcomes {
		if outcome.OK() {
			log.Info("Source collected",
				zap.String("source", string(kind)),
				zap.Int("hosts", len(outcome.Inventory.Hosts)),
			)
			continue
		}
		log.Warn("Source collection failed",
			zap.String("source", string(kind)),
			zap.String("kind", Classify(outcome.Err)),
			zap.Error(outcome.Err),
		)
	}

	result := Reconcile(snapshot, r.spec.comparisons())
	result.RunID = uuid.NewString()
	result.GeneratedAt = r.now().UTC()

	observeResult(&result)

	for _, c := range result.Comparisons {
		if c.Status == StatusIndeterminate {
			log.Warn("Comparison indeterminate", zap.String("comparison", c.Name), zap.String("reason", c.Reason))
			continue
		}
		log.Info("Comparison complete", zap.String("comparison", c.Name), zap.Int("missing", len(c.Missing)))
	}

	for _, hook := range r.hooks {
		hook(ctx, &result)
	}

	return &result
}

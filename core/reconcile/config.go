package reconcile

import (
	"time"

	"inventory-reconciler/core/utils"
)

// DefaultTimeoutSeconds bounds each adapter call when no positive timeout is configured.
const DefaultTimeoutSeconds = 120

// Config holds configuration for reconciliation runs.
type Config struct {
	// Organization is the default organization for CLI runs.
	Organization string `mapstructure:"organization" default:""`
	// Comparisons is a comma-separated list of source:against pairs. Empty means the defaults.
	Comparisons string `mapstructure:"comparisons" default:""`
	// TimeoutSeconds bounds each adapter call. Non-positive values fall back to DefaultTimeoutSeconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
}

// Timeout returns the per-source timeout. Adapter calls are never left unbounded.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewSpec builds a validated Spec from cfg and the given adapters.
func NewSpec(cfg Config, adapters ...Adapter) (*Spec, error) {
	comparisons, err := ParseComparisons(utils.SplitList(cfg.Comparisons))
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		Adapters:    make(map[SourceKind]Adapter, len(adapters)),
		Comparisons: comparisons,
		Timeout:     cfg.Timeout(),
	}
	for _, a := range adapters {
		if a != nil {
			spec.Adapters[a.Kind()] = a
		}
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

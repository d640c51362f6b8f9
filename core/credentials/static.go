package credentials

import (
	"context"
	"fmt"

	"inventory-reconciler/core/reconcile"
)

// StaticProvider serves credentials loaded once from configuration.
type StaticProvider struct {
	creds map[reconcile.SourceKind]Credentials
}

// NewStaticProvider creates a provider from a fixed map. Zero entries are ignored.
func NewStaticProvider(creds map[reconcile.SourceKind]Credentials) *StaticProvider {
	owned := make(map[reconcile.SourceKind]Credentials, len(creds))
	for kind, c := range creds {
		if !c.IsZero() {
			owned[kind] = c
		}
	}
	return &StaticProvider{creds: owned}
}

// Credentials implements Provider.
func (p *StaticProvider) Credentials(_ context.Context, source reconcile.SourceKind) (Credentials, error) {
	c, ok := p.creds[source]
	if !ok {
		return Credentials{}, fmt.Errorf("%w for %s", ErrNotFound, source)
	}
	return c, nil
}

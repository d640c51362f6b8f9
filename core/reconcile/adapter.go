package reconcile

import "context"

// Adapter defines the interface for source-specific inventory collection.
// Each adapter knows how to resolve an organization in its own system and
// list the hostnames associated with it (e.g., directory, RMM, endpoint protection).
type Adapter interface {
	// Name returns a human readable name of the backing system (e.g. "ldap", "datto-rmm").
	Name() string

	// Kind returns the source of record this adapter collects.
	Kind() SourceKind

	// LoadInventory returns every hostname the source associates with organization.
	// An empty inventory is a valid result meaning the organization has no devices.
	// Failures must be returned as errors wrapping ErrAuthentication, ErrLookup,
	// ErrTransport or ErrPartialResult; adapters must never return an empty
	// inventory to signal failure and must not retry internally.
	// Implementations must follow pagination until exhausted.
	LoadInventory(ctx context.Context, organization string) (*Inventory, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc struct {
	AdapterName string
	Source      SourceKind
	Load        func(ctx context.Context, organization string) (*Inventory, error)
}

func (f AdapterFunc) Name() string {
	return f.AdapterName
}

func (f AdapterFunc) Kind() SourceKind {
	return f.Source
}

func (f AdapterFunc) LoadInventory(ctx context.Context, organization string) (*Inventory, error) {
	return f.Load(ctx, organization)
}

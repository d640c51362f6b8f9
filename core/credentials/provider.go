package credentials

import (
	"context"
	"errors"
	"fmt"

	"inventory-reconciler/core/reconcile"
)

// ErrNotFound means the provider holds no credentials for a source.
var ErrNotFound = errors.New("credentials not found")

// Credentials holds the secrets needed to authenticate against one source.
// Which fields are used depends on the source: the directory binds with
// Username/Password, the RMM platform uses all four for its OAuth2 password
// grant, and the endpoint-protection console only uses Token.
type Credentials struct {
	Username     string `json:"username" mapstructure:"username" default:""`
	Password     string `json:"password" mapstructure:"password" default:""`
	ClientID     string `json:"client_id" mapstructure:"client_id" default:""`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret" default:""`
	Token        string `json:"token" mapstructure:"token" default:""`
}

// IsZero reports whether no credential field is set.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// String never prints secrets.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, ClientID: %q}", c.Username, c.ClientID)
}

// Provider returns the credentials of a source.
type Provider interface {
	Credentials(ctx context.Context, source reconcile.SourceKind) (Credentials, error)
}

// Resolve fetches credentials and maps every failure onto reconcile.ErrAuthentication,
// so adapters can return the error unchanged.
func Resolve(ctx context.Context, p Provider, source reconcile.SourceKind) (Credentials, error) {
	if p == nil {
		return Credentials{}, fmt.Errorf("%w: no credential provider configured", reconcile.ErrAuthentication)
	}
	creds, err := p.Credentials(ctx, source)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", reconcile.ErrAuthentication, err)
	}
	if creds.IsZero() {
		return Credentials{}, fmt.Errorf("%w: %w for %s", reconcile.ErrAuthentication, ErrNotFound, source)
	}
	return creds, nil
}

// Chain tries each provider in order and returns the first credentials found.
type Chain []Provider

// Credentials implements Provider.
func (c Chain) Credentials(ctx context.Context, source reconcile.SourceKind) (Credentials, error) {
	var errs []error
	for _, p := range c {
		creds, err := p.Credentials(ctx, source)
		if err == nil && !creds.IsZero() {
			return creds, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Credentials{}, errors.Join(errs...)
	}
	return Credentials{}, fmt.Errorf("%w for %s", ErrNotFound, source)
}

// Package credentials supplies source credentials to the inventory adapters.
//
// Credential acquisition is an injected capability: adapters ask a Provider for
// the credentials of their source and never prompt or read secrets themselves.
// The reconciliation engine never sees any secret.
//
// # Providers
//
//   - StaticProvider: credentials from configuration / environment variables.
//   - VaultProvider: credentials read from a HashiCorp Vault KV v2 mount,
//     one secret per source (e.g. "inventory/rmm").
//   - Chain: first provider that has credentials for a source wins.
//
// # Usage
//
//	provider := credentials.NewStaticProvider(map[reconcile.SourceKind]credentials.Credentials{
//	    reconcile.SourceRMM: {Username: "api-key", Password: "secret"},
//	})
//	creds, err := provider.Credentials(ctx, reconcile.SourceRMM)
package credentials

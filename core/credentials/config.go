package credentials

import (
	"inventory-reconciler/core/reconcile"
)

// Config holds the credential sources. Static entries come from the
// environment (e.g. CREDENTIALS_RMM_PASSWORD) and take precedence over Vault.
type Config struct {
	// Vault holds the optional Vault connection.
	Vault VaultConfig `mapstructure:"vault"`
	// Directory holds the directory bind account.
	Directory Credentials `mapstructure:"directory"`
	// RMM holds the RMM API key pair and optional OAuth2 client.
	RMM Credentials `mapstructure:"rmm"`
	// EDR holds the endpoint-protection API token.
	EDR Credentials `mapstructure:"edr"`
}

// NewProvider builds the provider chain described by cfg.
func NewProvider(cfg Config) (Provider, error) {
	chain := Chain{NewStaticProvider(map[reconcile.SourceKind]Credentials{
		reconcile.SourceDirectory:          cfg.Directory,
		reconcile.SourceRMM:                cfg.RMM,
		reconcile.SourceEndpointProtection: cfg.EDR,
	})}

	if cfg.Vault.Enabled() {
		vault, err := NewVaultProvider(cfg.Vault)
		if err != nil {
			return nil, err
		}
		chain = append(chain, vault)
	}

	return chain, nil
}

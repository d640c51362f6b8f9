package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/utils"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds configuration for reading credentials from Vault.
type VaultConfig struct {
	// Address is the Vault server URL. Empty disables the Vault provider.
	Address string `mapstructure:"address" default:""`
	// Token is the Vault token. Falls back to VAULT_TOKEN.
	Token string `mapstructure:"token" default:""`
	// Mount is the KV v2 mount path.
	Mount string `mapstructure:"mount" default:"secret"`
	// Prefix is prepended to the source name to build the secret path.
	Prefix string `mapstructure:"prefix" default:"inventory"`
}

// Enabled reports whether a Vault address is configured.
func (c VaultConfig) Enabled() bool {
	return c.Address != ""
}

// kvReader is the subset of *api.KVv2 used by the provider.
type kvReader interface {
	Get(ctx context.Context, secretPath string) (*api.KVSecret, error)
}

// VaultProvider reads one KV v2 secret per source.
type VaultProvider struct {
	kv     kvReader
	prefix string
}

// NewVaultProvider creates a Vault-backed provider.
func NewVaultProvider(cfg VaultConfig) (*VaultProvider, error) {
	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	} else if token := os.Getenv("VAULT_TOKEN"); token != "" {
		client.SetToken(token)
	}

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}

	return &VaultProvider{
		kv:     client.KVv2(mount),
		prefix: cfg.Prefix,
	}, nil
}

// SecretPath returns the secret path holding the credentials of source.
func (p *VaultProvider) SecretPath(source reconcile.SourceKind) string {
	return path.Join(p.prefix, string(source))
}

// Credentials implements Provider.
func (p *VaultProvider) Credentials(ctx context.Context, source reconcile.SourceKind) (Credentials, error) {
	secretPath := p.SecretPath(source)

	secret, err := p.kv.Get(ctx, secretPath)
	if err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return Credentials{}, fmt.Errorf("%w for %s at %s", ErrNotFound, source, secretPath)
		}
		return Credentials{}, fmt.Errorf("failed to read secret %s: %w", secretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return Credentials{}, fmt.Errorf("%w for %s at %s", ErrNotFound, source, secretPath)
	}

	return Credentials{
		Username:     utils.ToString(secret.Data["username"]),
		Password:     utils.ToString(secret.Data["password"]),
		ClientID:     utils.ToString(secret.Data["client_id"]),
		ClientSecret: utils.ToString(secret.Data["client_secret"]),
		Token:        utils.ToString(secret.Data["token"]),
	}, nil
}

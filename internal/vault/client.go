// Package vault loads the exchange API credentials from HashiCorp Vault when
// enabled; otherwise the credentials come straight from config/env.
package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
)

// Credentials is the API key pair stored at the configured secret path
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Config holds the Vault connection settings
type Config struct {
	Enabled    bool
	Address    string
	Token      string
	MountPath  string // KV v2 mount, e.g. "secret"
	SecretPath string // e.g. "spot-trader/api-keys"
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config Config
}

// NewClient creates a new Vault client. With Vault disabled the client is
// inert and Credentials returns an error, so callers must fall back to
// config-supplied keys before reaching for it.
func NewClient(cfg Config) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{client: client, config: cfg}, nil
}

// Credentials reads the API key pair from the KV v2 secret path
func (c *Client) Credentials(ctx context.Context) (Credentials, error) {
	if !c.config.Enabled {
		return Credentials{}, fmt.Errorf("vault is disabled")
	}

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return Credentials{}, fmt.Errorf("no credentials at %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return Credentials{}, fmt.Errorf("invalid secret format at %s", path)
	}

	creds := Credentials{
		APIKey:    getString(data, "api_key"),
		SecretKey: getString(data, "secret_key"),
	}
	if creds.APIKey == "" || creds.SecretKey == "" {
		return Credentials{}, fmt.Errorf("incomplete credentials at %s", path)
	}

	return creds, nil
}

// Health checks the Vault connection and seal state
func (c *Client) Health(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

// IsEnabled returns whether Vault is enabled
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

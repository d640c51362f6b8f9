// Package config provides configuration management for the inventory reconciler.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, request timeout)
//   - Log: Logging level and format
//   - Transport: outbound HTTP timeouts and user agent
//   - Credentials: per-source secrets and the optional Vault connection
//   - Directory, RMM, EDR: the three sources of record
//   - Reconcile: comparison set and per-source timeout
//   - Storage, Database: optional report sinks
//
// Every key maps to an environment variable made of its upper-cased path,
// e.g. rmm.base_url is read from RMM_BASE_URL and credentials.rmm.password
// from CREDENTIALS_RMM_PASSWORD.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config

// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key required by the
// authentication middleware, and the deadline applied to each
// reconciliation request.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server

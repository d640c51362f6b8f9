// Package transport builds the outbound HTTP clients used by the cloud inventory adapters.
//
// Clients share strict dial/TLS/header timeouts, OpenTelemetry instrumentation
// (otelhttp) and optional request pacing with a token bucket (x/time/rate).
// GetJSON maps network failures and HTTP status codes onto the reconcile error
// taxonomy so adapters can surface them unchanged.
package transport

package transport

// Config holds configuration for outbound HTTP clients.
type Config struct {
	// TimeoutSeconds bounds connection setup, TLS handshake and time to first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// InsecureSkipVerify disables TLS certificate verification (lab environments only).
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"false"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" default:"inventory-reconciler"`
}

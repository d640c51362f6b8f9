package edr

// Config holds configuration for the endpoint-protection console API.
type Config struct {
	// BaseURL is the console root (e.g. https://tenant.sentinelone.net).
	BaseURL string `mapstructure:"base_url" default:""`
	// APIPath is the versioned API prefix.
	APIPath string `mapstructure:"api_path" default:"/web/api/v2.1"`
	// PageSize is the number of agents requested per page.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// RequestsPerMinute paces outbound calls. Zero disables pacing.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"300"`
}

// Enabled reports whether the console is configured.
func (c Config) Enabled() bool {
	return c.BaseURL != ""
}

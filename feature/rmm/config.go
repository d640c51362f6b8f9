package rmm

// Config holds configuration for the RMM platform API.
type Config struct {
	// BaseURL is the API root (e.g. https://pinotage-api.centrastage.net).
	BaseURL string `mapstructure:"base_url" default:""`
	// TokenPath is the OAuth2 token endpoint path relative to BaseURL.
	TokenPath string `mapstructure:"token_path" default:"/auth/oauth/token"`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"250"`
	// RequestsPerMinute paces outbound calls. Zero disables pacing.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"600"`
}

// Enabled reports whether the RMM platform is configured.
func (c Config) Enabled() bool {
	return c.BaseURL != ""
}

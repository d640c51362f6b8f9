package directory

// Config holds configuration for the LDAP directory.
type Config struct {
	// URL is the directory address (ldap:// or ldaps://).
	URL string `mapstructure:"url" default:""`
	// BaseDN is the root below which organizations are looked up.
	BaseDN string `mapstructure:"base_dn" default:""`
	// ClientsPath optionally narrows the lookup (e.g. "OU=Clients"); it is prepended to BaseDN.
	ClientsPath string `mapstructure:"clients_path" default:""`
	// RecencyDays drops computers whose last logon is older than this many days.
	RecencyDays int `mapstructure:"recency_days" default:"30"`
	// PageSize is the LDAP paged-results control size.
	PageSize int `mapstructure:"page_size" default:"500"`
	// StartTLS upgrades a plain ldap:// connection.
	StartTLS bool `mapstructure:"start_tls" default:"false"`
	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"false"`
	// TimeoutSeconds bounds dialing.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}

// Enabled reports whether the directory is configured.
func (c Config) Enabled() bool {
	return c.URL != "" && c.BaseDN != ""
}

// SearchBase returns the DN organizations are looked up under.
func (c Config) SearchBase() string {
	if c.ClientsPath == "" {
		return c.BaseDN
	}
	return c.ClientsPath + "," + c.BaseDN
}

package rmm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inventory-reconciler/core/credentials"
	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/transport"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultClientID     = "public-client"
	defaultClientSecret = "public"
)

// Adapter implements reconcile.Adapter for the RMM platform.
type Adapter struct {
	cfg         Config
	client      *http.Client
	credentials credentials.Provider
	logger      *zap.Logger
}

// NewAdapter creates an RMM adapter. The HTTP client should come from transport.NewHTTPClient.
func NewAdapter(cfg Config, client *http.Client, provider credentials.Provider, logger *zap.Logger) *Adapter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 250
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = "/auth/oauth/token"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:         cfg,
		client:      client,
		credentials: provider,
		logger:      logger.With(zap.String("source", string(reconcile.SourceRMM))),
	}
}

// Name returns the name of the backing system.
func (a *Adapter) Name() string {
	return "rmm"
}

// Kind returns reconcile.SourceRMM.
func (a *Adapter) Kind() reconcile.SourceKind {
	return reconcile.SourceRMM
}

// LoadInventory returns the hostnames of every device in every site whose name
// contains organization.
func (a *Adapter) LoadInventory(ctx context.Context, organization string) (*reconcile.Inventory, error) {
	header, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	sites, err := a.matchSites(ctx, header, organization)
	if err != nil {
		return nil, err
	}

	var hosts []string
	for _, site := range sites {
		siteHosts, err := a.siteDevices(ctx, header, site)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, siteHosts...)
	}

	a.logger.Debug("Loaded RMM inventory",
		zap.String("organization", organization),
		zap.Int("sites", len(sites)),
		zap.Int("devices", len(hosts)),
	)

	return reconcile.NewInventory(reconcile.SourceRMM, organization, hosts, time.Now()), nil
}

// authenticate exchanges the API key pair for a bearer token.
func (a *Adapter) authenticate(ctx context.Context) (http.Header, error) {
	creds, err := credentials.Resolve(ctx, a.credentials, reconcile.SourceRMM)
	if err != nil {
		return nil, err
	}

	clientID, clientSecret := creds.ClientID, creds.ClientSecret
	if clientID == "" {
		clientID, clientSecret = defaultClientID, defaultClientSecret
	}

	oauthCfg := oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.cfg.BaseURL + a.cfg.TokenPath,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	// The token request goes through the same paced, instrumented client.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := oauthCfg.PasswordCredentialsToken(tokenCtx, creds.Username, creds.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && (retrieveErr.Response == nil || retrieveErr.Response.StatusCode < 500) {
			return nil, fmt.Errorf("%w: token request rejected: %w", reconcile.ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: token request failed: %w", reconcile.ErrTransport, err)
	}

	return http.Header{"Authorization": []string{token.Type() + " " + token.AccessToken}}, nil
}

// matchSites lists every account site and keeps those whose name contains organization.
func (a *Adapter) matchSites(ctx context.Context, header http.Header, organization string) ([]Site, error) {
	needle := strings.ToLower(strings.TrimSpace(organization))

	var matched []Site
	next := a.firstPage("/api/v2/account/sites")
	seen := make(map[string]bool)

	for page := 0; next != ""; page++ {
		if seen[next] {
			return nil, fmt.Errorf("%w: sites pagination loops at %s", reconcile.ErrPartialResult, next)
		}
		seen[next] = true

		var resp SitesPage
		if err := transport.GetJSON(ctx, a.client, next, header, &resp); err != nil {
			return nil, pageError("sites", page, err)
		}

		for _, site := range resp.Sites {
			if strings.Contains(strings.ToLower(site.Name), needle) {
				matched = append(matched, site)
			}
		}
		next = resp.PageDetails.NextPageURL
	}

	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: no RMM site name contains %q", reconcile.ErrLookup, organization)
	}
	return matched, nil
}

// siteDevices lists the hostnames of every non-deleted device of a site.
func (a *Adapter) siteDevices(ctx context.Context, header http.Header, site Site) ([]string, error) {
	var hosts []string
	next := a.firstPage("/api/v2/site/" + url.PathEscape(site.UID) + "/devices")
	seen := make(map[string]bool)

	for page := 0; next != ""; page++ {
		if seen[next] {
			return nil, fmt.Errorf("%w: devices pagination for site %s loops at %s", reconcile.ErrPartialResult, site.Name, next)
		}
		seen[next] = true

		var resp DevicesPage
		if err := transport.GetJSON(ctx, a.client, next, header, &resp); err != nil {
			return nil, pageError("devices of site "+site.Name, page, err)
		}

		for _, d := range resp.Devices {
			if d.Deleted {
				continue
			}
			if d.Hostname == nil {
				hosts = append(hosts, "")
				continue
			}
			hosts = append(hosts, *d.Hostname)
		}
		next = resp.PageDetails.NextPageURL
	}

	return hosts, nil
}

func (a *Adapter) firstPage(path string) string {
	return fmt.Sprintf("%s%s?max=%d", a.cfg.BaseURL, path, a.cfg.PageSize)
}

// pageError marks failures after the first page as partial results.
func pageError(listing string, page int, err error) error {
	if page == 0 {
		return fmt.Errorf("listing %s: %w", listing, err)
	}
	return fmt.Errorf("%w: listing %s stopped at page %d: %w", reconcile.ErrPartialResult, listing, page, err)
}

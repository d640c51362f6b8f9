package edr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventory-reconciler/core/credentials"
	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/transport"

	"go.uber.org/zap"
)

// Adapter implements reconcile.Adapter for the endpoint-protection console.
type Adapter struct {
	cfg         Config
	client      *http.Client
	credentials credentials.Provider
	logger      *zap.Logger
}

// NewAdapter creates an endpoint-protection adapter.
func NewAdapter(cfg Config, client *http.Client, provider credentials.Provider, logger *zap.Logger) *Adapter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.APIPath == "" {
		cfg.APIPath = "/web/api/v2.1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:         cfg,
		client:      client,
		credentials: provider,
		logger:      logger.With(zap.String("source", string(reconcile.SourceEndpointProtection))),
	}
}

// Name returns the name of the backing system.
func (a *Adapter) Name() string {
	return "edr"
}

// Kind returns reconcile.SourceEndpointProtection.
func (a *Adapter) Kind() reconcile.SourceKind {
	return reconcile.SourceEndpointProtection
}

// LoadInventory returns the computer names of every active agent in the site
// named exactly like organization.
func (a *Adapter) LoadInventory(ctx context.Context, organization string) (*reconcile.Inventory, error) {
	creds, err := credentials.Resolve(ctx, a.credentials, reconcile.SourceEndpointProtection)
	if err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("%w: no API token for %s", reconcile.ErrAuthentication, reconcile.SourceEndpointProtection)
	}
	header := http.Header{"Authorization": []string{"ApiToken " + creds.Token}}

	site, err := a.findSite(ctx, header, organization)
	if err != nil {
		return nil, err
	}

	hosts, err := a.siteAgents(ctx, header, site)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Loaded endpoint-protection inventory",
		zap.String("organization", organization),
		zap.String("site_id", site.ID),
		zap.Int("agents", len(hosts)),
	)

	return reconcile.NewInventory(reconcile.SourceEndpointProtection, organization, hosts, time.Now()), nil
}

// findSite resolves the organization to the single site whose name equals it, ignoring case.
// Every page of the listing is read so a match on a later page is neither missed nor taken as unique.
func (a *Adapter) findSite(ctx context.Context, header http.Header, organization string) (Site, error) {
	name := strings.TrimSpace(organization)

	var matched []Site
	cursor := ""
	seen := make(map[string]bool)

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("name", name)
		q.Set("limit", "100")
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp SitesResponse
		if err := transport.GetJSON(ctx, a.client, a.endpoint("/sites", q), header, &resp); err != nil {
			if page == 0 {
				return Site{}, fmt.Errorf("listing sites: %w", err)
			}
			return Site{}, fmt.Errorf("%w: listing sites stopped at page %d: %w", reconcile.ErrPartialResult, page, err)
		}

		for _, s := range resp.Data.Sites {
			if strings.EqualFold(strings.TrimSpace(s.Name), name) {
				matched = append(matched, s)
			}
		}

		cursor = resp.Pagination.NextCursor
		if cursor == "" {
			break
		}
		if seen[cursor] {
			return Site{}, fmt.Errorf("%w: sites cursor repeats", reconcile.ErrPartialResult)
		}
		seen[cursor] = true
	}

	switch len(matched) {
	case 0:
		return Site{}, fmt.Errorf("%w: no console site named %q", reconcile.ErrLookup, organization)
	case 1:
		return matched[0], nil
	default:
		return Site{}, fmt.Errorf("%w: %d console sites named %q", reconcile.ErrLookup, len(matched), organization)
	}
}

// siteAgents follows the agents cursor until the console stops returning one.
func (a *Adapter) siteAgents(ctx context.Context, header http.Header, site Site) ([]string, error) {
	var hosts []string
	cursor := ""
	seen := make(map[string]bool)

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("siteIds", site.ID)
		q.Set("limit", strconv.Itoa(a.cfg.PageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp AgentsResponse
		if err := transport.GetJSON(ctx, a.client, a.endpoint("/agents", q), header, &resp); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("listing agents of site %s: %w", site.Name, err)
			}
			return nil, fmt.Errorf("%w: listing agents of site %s stopped at page %d: %w",
				reconcile.ErrPartialResult, site.Name, page, err)
		}

		for _, agent := range resp.Data {
			if agent.IsDecommissioned {
				continue
			}
			hosts = append(hosts, agent.ComputerName)
		}

		cursor = resp.Pagination.NextCursor
		if cursor == "" {
			return hosts, nil
		}
		if seen[cursor] {
			return nil, fmt.Errorf("%w: agents cursor repeats for site %s", reconcile.ErrPartialResult, site.Name)
		}
		seen[cursor] = true
	}
}

func (a *Adapter) endpoint(path string, q url.Values) string {
	return a.cfg.BaseURL + a.cfg.APIPath + path + "?" + q.Encode()
}

package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-reconciler/core/credentials"
	"inventory-reconciler/core/reconcile"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// windowsEpochOffset is the number of seconds between 1601-01-01 and 1970-01-01.
const windowsEpochOffset = 11644473600

var computerAttributes = []string{"cn", "dNSHostName", "lastLogonTimestamp"}

// Adapter implements reconcile.Adapter for an LDAP directory.
type Adapter struct {
	cfg         Config
	dial        Dialer
	credentials credentials.Provider
	logger      *zap.Logger
	now         func() time.Time
}

// NewAdapter creates a directory adapter. A nil dialer uses Dial.
func NewAdapter(cfg Config, dial Dialer, provider credentials.Provider, logger *zap.Logger) *Adapter {
	if cfg.RecencyDays <= 0 {
		cfg.RecencyDays = 30
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if dial == nil {
		dial = Dial
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:         cfg,
		dial:        dial,
		credentials: provider,
		logger:      logger.With(zap.String("source", string(reconcile.SourceDirectory))),
		now:         time.Now,
	}
}

// Name returns the name of the backing system.
func (a *Adapter) Name() string {
	return "directory"
}

// Kind returns reconcile.SourceDirectory.
func (a *Adapter) Kind() reconcile.SourceKind {
	return reconcile.SourceDirectory
}

// LoadInventory returns the recently active computers of the organization's OU.
func (a *Adapter) LoadInventory(ctx context.Context, organization string) (*reconcile.Inventory, error) {
	creds, err := credentials.Resolve(ctx, a.credentials, reconcile.SourceDirectory)
	if err != nil {
		return nil, err
	}

	conn, err := a.dial(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Closing the connection aborts any in-flight operation.
	stop := context.AfterFunc(ctx, conn.Close)
	defer stop()

	if err := conn.Bind(creds.Username, creds.Password); err != nil {
		return nil, a.wrap(ctx, "bind", err)
	}

	ouDN, err := a.findOrganizationalUnit(ctx, conn, organization)
	if err != nil {
		return nil, err
	}

	hosts, err := a.listComputers(ctx, conn, ouDN)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Loaded directory inventory",
		zap.String("organization", organization),
		zap.String("ou", ouDN),
		zap.Int("computers", len(hosts)),
	)

	return reconcile.NewInventory(reconcile.SourceDirectory, organization, hosts, a.now()), nil
}

// findOrganizationalUnit resolves organization to the DN of exactly one OU.
func (a *Adapter) findOrganizationalUnit(ctx context.Context, conn Conn, organization string) (string, error) {
	filter := fmt.Sprintf("(&(objectClass=organizationalUnit)(ou=%s))", ldap.EscapeFilter(strings.TrimSpace(organization)))
	req := ldap.NewSearchRequest(
		a.cfg.SearchBase(),
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		[]string{"ou"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return "", fmt.Errorf("%w: search base %s does not exist: %w", reconcile.ErrLookup, a.cfg.SearchBase(), err)
		}
		return "", a.wrap(ctx, "organizational unit lookup", err)
	}

	switch len(res.Entries) {
	case 0:
		return "", fmt.Errorf("%w: no organizational unit named %q under %s", reconcile.ErrLookup, organization, a.cfg.SearchBase())
	case 1:
		return res.Entries[0].DN, nil
	default:
		return "", fmt.Errorf("%w: %d organizational units named %q", reconcile.ErrLookup, len(res.Entries), organization)
	}
}

// listComputers pages through the computer objects of ouDN that logged on within the window.
func (a *Adapter) listComputers(ctx context.Context, conn Conn, ouDN string) ([]string, error) {
	cutoff := a.now().AddDate(0, 0, -a.cfg.RecencyDays)
	filter := fmt.Sprintf("(&(objectClass=computer)(lastLogonTimestamp>=%d))", FileTime(cutoff))

	req := ldap.NewSearchRequest(
		ouDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		computerAttributes,
		nil,
	)

	res, err := conn.SearchWithPaging(req, uint32(a.cfg.PageSize))
	if err != nil {
		if (res != nil && len(res.Entries) > 0) || ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
			return nil, fmt.Errorf("%w: computer search of %s truncated: %w", reconcile.ErrPartialResult, ouDN, err)
		}
		return nil, a.wrap(ctx, "computer search", err)
	}

	hosts := make([]string, 0, len(res.Entries))
	for _, entry := range res.Entries {
		hosts = append(hosts, HostName(entry))
	}
	return hosts, nil
}

// wrap maps an LDAP error onto the error taxonomy.
func (a *Adapter) wrap(ctx context.Context, op string, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %s: %w", reconcile.ErrTransport, op, errors.Join(ctx.Err(), err))
	case ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials),
		ldap.IsErrorWithCode(err, ldap.LDAPResultInsufficientAccessRights),
		ldap.IsErrorWithCode(err, ldap.LDAPResultInappropriateAuthentication):
		return fmt.Errorf("%w: %s: %w", reconcile.ErrAuthentication, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", reconcile.ErrTransport, op, err)
	}
}

// FileTime converts t to a Windows FILETIME (100ns intervals since 1601-01-01).
func FileTime(t time.Time) int64 {
	return (t.Unix() + windowsEpochOffset) * 10_000_000
}

// HostName returns the first label of the entry's dNSHostName, or its cn.
func HostName(entry *ldap.Entry) string {
	if dns := strings.TrimSpace(entry.GetAttributeValue("dNSHostName")); dns != "" {
		host, _, _ := strings.Cut(dns, ".")
		return host
	}
	return entry.GetAttributeValue("cn")
}

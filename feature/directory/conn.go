package directory

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"inventory-reconciler/core/reconcile"

	"github.com/go-ldap/ldap/v3"
)

// Conn is the subset of an LDAP connection the adapter uses.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	SearchWithPaging(req *ldap.SearchRequest, pagingSize uint32) (*ldap.SearchResult, error)
	Close()
}

// Dialer opens a connection to the directory.
type Dialer func(ctx context.Context, cfg Config) (Conn, error)

type ldapConn struct {
	*ldap.Conn
}

func (c ldapConn) Close() {
	c.Conn.Close()
}

// Dial connects to cfg.URL, upgrading with StartTLS when configured.
func Dial(ctx context.Context, cfg Config) (Conn, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // opt-in for lab directories

	conn, err := ldap.DialURL(cfg.URL,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		ldap.DialWithTLSConfig(tlsConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial directory: %w", reconcile.ErrTransport, err)
	}

	if cfg.StartTLS {
		if err := conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: StartTLS failed: %w", reconcile.ErrTransport, err)
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}

	return ldapConn{Conn: conn}, nil
}

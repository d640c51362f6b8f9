package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory-reconciler/core/credentials"
	"inventory-reconciler/core/reconcile"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Bind(username, password string) error {
	return m.Called(username, password).Error(0)
}

func (m *mockConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*ldap.SearchResult)
	return res, args.Error(1)
}

func (m *mockConn) SearchWithPaging(req *ldap.SearchRequest, pagingSize uint32) (*ldap.SearchResult, error) {
	args := m.Called(req, pagingSize)
	res, _ := args.Get(0).(*ldap.SearchResult)
	return res, args.Error(1)
}

func (m *mockConn) Close() {
	m.Called()
}

var fixedNow = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

func newTestAdapter(conn *mockConn) *Adapter {
	provider := credentials.NewStaticProvider(map[reconcile.SourceKind]credentials.Credentials{
		reconcile.SourceDirectory: {Username: "svc-inventory@corp.local", Password: "pw"},
	})
	cfg := Config{BaseDN: "DC=corp,DC=local", ClientsPath: "OU=Clients", PageSize: 100}
	dial := func(context.Context, Config) (Conn, error) { return conn, nil }

	a := NewAdapter(cfg, dial, provider, nil)
	a.now = func() time.Time { return fixedNow }
	return a
}

func ouResult(dns ...string) *ldap.SearchResult {
	res := &ldap.SearchResult{}
	for _, dn := range dns {
		res.Entries = append(res.Entries, ldap.NewEntry(dn, map[string][]string{"ou": {"Contoso"}}))
	}
	return res
}

func computer(cn, dns string) *ldap.Entry {
	attrs := map[string][]string{"cn": {cn}}
	if dns != "" {
		attrs["dNSHostName"] = []string{dns}
	}
	return ldap.NewEntry(fmt.Sprintf("CN=%s,OU=Contoso,OU=Clients,DC=corp,DC=local", cn), attrs)
}

func TestAdapter_LoadInventory(t *testing.T) {
	conn := &mockConn{}
	conn.On("Close").Return()
	conn.On("Bind", "svc-inventory@corp.local", "pw").Return(nil)
	conn.On("Search", mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.BaseDN == "OU=Clients,DC=corp,DC=local" &&
			req.Filter == "(&(objectClass=organizationalUnit)(ou=Contoso))"
	})).Return(ouResult("OU=Contoso,OU=Clients,DC=corp,DC=local"), nil)

	cutoff := FileTime(fixedNow.AddDate(0, 0, -30))
	conn.On("SearchWithPaging", mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.BaseDN == "OU=Contoso,OU=Clients,DC=corp,DC=local" &&
			req.Filter == fmt.Sprintf("(&(objectClass=computer)(lastLogonTimestamp>=%d))", cutoff)
	}), uint32(100)).Return(&ldap.SearchResult{Entries: []*ldap.Entry{
		computer("WKS01", "wks01.corp.local"),
		computer("WKS02", ""),
		computer("LEGACY", "wks03.corp.local"),
	}}, nil)

	inv, err := newTestAdapter(conn).LoadInventory(context.Background(), " Contoso ")
	require.NoError(t, err)

	assert.Equal(t, reconcile.SourceDirectory, inv.Source)
	assert.Equal(t, []string{"wks01", "WKS02", "wks03"}, inv.Hosts)
	assert.Equal(t, fixedNow, inv.CollectedAt)
	conn.AssertExpectations(t)
}

func TestAdapter_Errors(t *testing.T) {
	ouFound := ouResult("OU=Contoso,OU=Clients,DC=corp,DC=local")

	tests := []struct {
		name  string
		setup func(conn *mockConn)
		kind  string
	}{
		{
			name: "Invalid credentials",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).
					Return(ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("bad password")))
			},
			kind: reconcile.KindAuthentication,
		},
		{
			name: "Server unreachable mid-bind",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).
					Return(ldap.NewError(ldap.ErrorNetwork, errors.New("connection reset")))
			},
			kind: reconcile.KindTransport,
		},
		{
			name: "No organizational unit",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).Return(nil)
				conn.On("Search", mock.Anything).Return(ouResult(), nil)
			},
			kind: reconcile.KindLookup,
		},
		{
			name: "Ambiguous organizational unit",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).Return(nil)
				conn.On("Search", mock.Anything).
					Return(ouResult("OU=Contoso,OU=Clients,DC=corp,DC=local", "OU=Contoso,OU=Old,OU=Clients,DC=corp,DC=local"), nil)
			},
			kind: reconcile.KindLookup,
		},
		{
			name: "Search base missing",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).Return(nil)
				conn.On("Search", mock.Anything).
					Return(nil, ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("no such object")))
			},
			kind: reconcile.KindLookup,
		},
		{
			name: "Paging interrupted",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).Return(nil)
				conn.On("Search", mock.Anything).Return(ouFound, nil)
				conn.On("SearchWithPaging", mock.Anything, mock.Anything).
					Return(&ldap.SearchResult{Entries: []*ldap.Entry{computer("WKS01", "")}},
						ldap.NewError(ldap.ErrorNetwork, errors.New("connection closed")))
			},
			kind: reconcile.KindPartialResult,
		},
		{
			name: "Size limit exceeded",
			setup: func(conn *mockConn) {
				conn.On("Bind", mock.Anything, mock.Anything).Return(nil)
				conn.On("Search", mock.Anything).Return(ouFound, nil)
				conn.On("SearchWithPaging", mock.Anything, mock.Anything).
					Return(nil, ldap.NewError(ldap.LDAPResultSizeLimitExceeded, errors.New("size limit")))
			},
			kind: reconcile.KindPartialResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockConn{}
			conn.On("Close").Return()
			tt.setup(conn)

			inv, err := newTestAdapter(conn).LoadInventory(context.Background(), "Contoso")
			require.Error(t, err)
			assert.Nil(t, inv)
			assert.Equal(t, tt.kind, reconcile.Classify(err))
		})
	}
}

func TestAdapter_DialFailure(t *testing.T) {
	provider := credentials.NewStaticProvider(map[reconcile.SourceKind]credentials.Credentials{
		reconcile.SourceDirectory: {Username: "u", Password: "p"},
	})
	dial := func(context.Context, Config) (Conn, error) {
		return nil, fmt.Errorf("%w: refused", reconcile.ErrTransport)
	}

	_, err := NewAdapter(Config{}, dial, provider, nil).LoadInventory(context.Background(), "Contoso")
	assert.ErrorIs(t, err, reconcile.ErrTransport)
}

func TestAdapter_MissingCredentials(t *testing.T) {
	dialed := false
	dial := func(context.Context, Config) (Conn, error) {
		dialed = true
		return nil, errors.New("unexpected dial")
	}

	_, err := NewAdapter(Config{}, dial, credentials.NewStaticProvider(nil), nil).
		LoadInventory(context.Background(), "Contoso")
	assert.ErrorIs(t, err, reconcile.ErrAuthentication)
	assert.False(t, dialed)
}

func TestFileTime(t *testing.T) {
	assert.Equal(t, int64(116444736000000000), FileTime(time.Unix(0, 0)))
	assert.Equal(t, int64(134193888000000000), FileTime(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
}

func TestConfig_SearchBase(t *testing.T) {
	assert.Equal(t, "DC=corp,DC=local", Config{BaseDN: "DC=corp,DC=local"}.SearchBase())
	assert.Equal(t, "OU=Clients,DC=corp,DC=local", Config{BaseDN: "DC=corp,DC=local", ClientsPath: "OU=Clients"}.SearchBase())
	assert.False(t, Config{URL: "ldaps://dc01"}.Enabled())
}

package ldap

import (
	"context"
	"errors"
	"testing"

	"session-auth/internal/config"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	binds    map[string]string
	bindErr  error
	entries  []*goldap.Entry
	requests []*goldap.SearchRequest
	bound    []string
	closed   int
}

func (f *fakeConn) Bind(username, password string) error {
	f.bound = append(f.bound, username)
	if f.bindErr != nil {
		return f.bindErr
	}
	if want, ok := f.binds[username]; ok && want == password {
		return nil
	}
	return goldap.NewError(goldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func (f *fakeConn) Search(req *goldap.SearchRequest) (*goldap.SearchResult, error) {
	f.requests = append(f.requests, req)
	return &goldap.SearchResult{Entries: f.entries}, nil
}

func (f *fakeConn) Close() error {
	f.closed++
	return nil
}

func testConfig() config.LDAPConfig {
	return config.LDAPConfig{
		URL:          "ldap://dc.example.test:389",
		Domain:       "example.test",
		BaseDN:       "dc=example,dc=test",
		BindDN:       "cn=svc,dc=example,dc=test",
		BindPassword: "svc-pass",
		UserFilter:   "(&(objectClass=person)(sAMAccountName=%s))",
		RoleGroups: map[string]int{
			"cn=editors,dc=example,dc=test":  20,
			"cn=managers,dc=example,dc=test": 30,
		},
		DefaultRole: 10,
	}
}

func newTestDirectory(t *testing.T, fc *fakeConn) *Directory {
	t.Helper()
	d, err := New(testConfig())
	require.NoError(t, err)
	d.dial = func(context.Context) (conn, error) { return fc, nil }
	return d
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(config.LDAPConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConnect(t *testing.T) {
	fc := &fakeConn{}
	d := newTestDirectory(t, fc)
	require.NoError(t, d.Connect(context.Background()))
	assert.Equal(t, 1, fc.closed)

	dialErr := errors.New("connection refused")
	d.dial = func(context.Context) (conn, error) { return nil, dialErr }
	assert.ErrorIs(t, d.Connect(context.Background()), dialErr)
}

func TestBind(t *testing.T) {
	fc := &fakeConn{binds: map[string]string{"jdoe@example.test": "s3cret"}}
	d := newTestDirectory(t, fc)
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		secret     string
		wantErr    bool
	}{
		{"short name gets domain", "jdoe", "s3cret", false},
		{"full principal", "jdoe@example.test", "s3cret", false},
		{"wrong password", "jdoe", "nope", true},
		{"empty secret", "jdoe", "", true},
		{"empty identifier", "", "s3cret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Bind(ctx, tt.identifier, tt.secret)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBindWrapsServerErrors(t *testing.T) {
	fc := &fakeConn{bindErr: goldap.NewError(goldap.LDAPResultUnavailable, errors.New("busy"))}
	d := newTestDirectory(t, fc)

	err := d.Bind(context.Background(), "jdoe", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "busy")
}

func TestCanonicalIdentifier(t *testing.T) {
	d := newTestDirectory(t, &fakeConn{})
	assert.Equal(t, "jdoe@example.test", d.CanonicalIdentifier("JDoe"))
	assert.Equal(t, "jdoe@other.test", d.CanonicalIdentifier("jdoe@other.test"))
}

func TestFetchUserMapsAttributes(t *testing.T) {
	fc := &fakeConn{
		binds: map[string]string{"cn=svc,dc=example,dc=test": "svc-pass"},
		entries: []*goldap.Entry{goldap.NewEntry("cn=jdoe,dc=example,dc=test", map[string][]string{
			attrGivenName:    {"Jane"},
			attrSurname:      {"Doe"},
			attrPhone:        {"+1 555 0100"},
			attrMail:         {"Jane.Doe@Example.test"},
			attrDepartment:   {"Finance"},
			attrTitle:        {"Controller"},
			attrEmployeeType: {"L3"},
			attrMemberOf:     {"CN=Editors,DC=example,DC=test", "cn=managers,dc=example,dc=test", "cn=other"},
		})},
	}
	d := newTestDirectory(t, fc)

	du, err := d.FetchUser(context.Background(), "jdoe@example.test")
	require.NoError(t, err)

	assert.Equal(t, "Jane", du.FirstName)
	assert.Equal(t, "Doe", du.LastName)
	assert.Equal(t, "+1 555 0100", du.Phone)
	assert.Equal(t, "jane.doe@example.test", du.Email)
	assert.Equal(t, "Finance", du.Department)
	assert.Equal(t, "Controller", du.JobTitle)
	assert.Equal(t, "L3", du.JobLevel)
	assert.Equal(t, 30, du.Role)

	require.Len(t, fc.requests, 1)
	assert.Equal(t, "(&(objectClass=person)(sAMAccountName=jdoe))", fc.requests[0].Filter)
	assert.Equal(t, []string{"cn=svc,dc=example,dc=test"}, fc.bound)
}

func TestFetchUserEscapesFilter(t *testing.T) {
	fc := &fakeConn{binds: map[string]string{"cn=svc,dc=example,dc=test": "svc-pass"}}
	d := newTestDirectory(t, fc)

	_, err := d.FetchUser(context.Background(), "*)(uid=*")
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.Len(t, fc.requests, 1)
	assert.NotContains(t, fc.requests[0].Filter, "*)(uid=*")
}

func TestFetchUserEntryCount(t *testing.T) {
	entry := goldap.NewEntry("cn=a", map[string][]string{attrGivenName: {"A"}})
	fc := &fakeConn{
		binds:   map[string]string{"cn=svc,dc=example,dc=test": "svc-pass"},
		entries: []*goldap.Entry{entry, entry},
	}
	d := newTestDirectory(t, fc)

	_, err := d.FetchUser(context.Background(), "jdoe")
	assert.ErrorIs(t, err, ErrAmbiguousUser)
}

func TestFetchUserServiceBindFailure(t *testing.T) {
	fc := &fakeConn{}
	d := newTestDirectory(t, fc)

	_, err := d.FetchUser(context.Background(), "jdoe")
	require.Error(t, err)
	assert.Empty(t, fc.requests)
}

func TestRoleFor(t *testing.T) {
	d := newTestDirectory(t, &fakeConn{})

	tests := []struct {
		name   string
		groups []string
		want   int
	}{
		{"no groups", nil, 10},
		{"unmapped groups", []string{"cn=staff"}, 10},
		{"single group", []string{"cn=editors,dc=example,dc=test"}, 20},
		{"highest wins", []string{"cn=managers,dc=example,dc=test", "cn=editors,dc=example,dc=test"}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.roleFor(tt.groups))
		})
	}
}

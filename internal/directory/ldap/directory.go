// Package ldap authenticates users against an LDAP or Active Directory server
// and reads the profile attributes mirrored into local accounts.
package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"session-auth/internal/config"
	"session-auth/internal/domain/user"

	goldap "github.com/go-ldap/ldap/v3"
)

// conn is the subset of *goldap.Conn used here.
type conn interface {
	Bind(username, password string) error
	Search(req *goldap.SearchRequest) (*goldap.SearchResult, error)
	Close() error
}

type dialFunc func(ctx context.Context) (conn, error)

// Directory opens a fresh connection per operation, so a single value is safe
// for concurrent logins.
type Directory struct {
	cfg  config.LDAPConfig
	dial dialFunc
}

func New(cfg config.LDAPConfig) (*Directory, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	d := &Directory{cfg: cfg}
	d.dial = d.dialServer
	return d, nil
}

func (d *Directory) dialServer(ctx context.Context) (conn, error) {
	dialer := &net.Dialer{Timeout: d.cfg.Timeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	c, err := goldap.DialURL(d.cfg.URL, goldap.DialWithDialer(dialer))
	if err != nil {
		return nil, errDial(d.cfg.URL, err)
	}
	if d.cfg.Timeout > 0 {
		c.SetTimeout(d.cfg.Timeout)
	}

	if d.cfg.StartTLS {
		host := d.cfg.URL
		if i := strings.Index(host, "://"); i >= 0 {
			host = host[i+3:]
		}
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			c.Close()
			return nil, errStartTLS(err)
		}
	}
	return c, nil
}

// Connect checks that the directory is reachable.
func (d *Directory) Connect(ctx context.Context) error {
	c, err := d.dial(ctx)
	if err != nil {
		return err
	}
	return c.Close()
}

// Bind authenticates identifier as user@domain. Empty secrets are rejected
// before reaching the server, which would treat them as an anonymous bind.
func (d *Directory) Bind(ctx context.Context, identifier, secret string) error {
	if identifier == "" || secret == "" {
		return ErrInvalidCredentials
	}

	c, err := d.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Bind(d.principal(identifier), secret); err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultInvalidCredentials) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf(errBindFmt, ErrInvalidCredentials, err)
	}
	return nil
}

// CanonicalIdentifier maps a login name to the email stored locally.
func (d *Directory) CanonicalIdentifier(identifier string) string {
	return strings.ToLower(d.principal(identifier))
}

func (d *Directory) principal(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, domainSeparator) || d.cfg.Domain == "" {
		return identifier
	}
	return identifier + domainSeparator + d.cfg.Domain
}

func accountName(identifier string) string {
	if i := strings.Index(identifier, domainSeparator); i >= 0 {
		return identifier[:i]
	}
	return identifier
}

// FetchUser looks identifier up with the service account and maps its
// attributes.
func (d *Directory) FetchUser(ctx context.Context, identifier string) (*user.DirectoryUser, error) {
	c, err := d.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if d.cfg.BindDN != "" {
		if err := c.Bind(d.cfg.BindDN, d.cfg.BindPassword); err != nil {
			return nil, errServiceBind(err)
		}
	}

	name := accountName(strings.TrimSpace(identifier))
	req := goldap.NewSearchRequest(
		d.cfg.BaseDN,
		goldap.ScopeWholeSubtree,
		goldap.NeverDerefAliases,
		2,
		int(d.cfg.Timeout/time.Second),
		false,
		fmt.Sprintf(d.cfg.UserFilter, goldap.EscapeFilter(name)),
		searchAttributes,
		nil,
	)

	res, err := c.Search(req)
	if err != nil {
		return nil, errSearch(name, err)
	}
	switch len(res.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
	default:
		return nil, ErrAmbiguousUser
	}

	return d.mapEntry(res.Entries[0]), nil
}

func (d *Directory) mapEntry(e *goldap.Entry) *user.DirectoryUser {
	return &user.DirectoryUser{
		FirstName:  e.GetAttributeValue(attrGivenName),
		LastName:   e.GetAttributeValue(attrSurname),
		Phone:      e.GetAttributeValue(attrPhone),
		Email:      strings.ToLower(e.GetAttributeValue(attrMail)),
		Department: e.GetAttributeValue(attrDepartment),
		JobTitle:   e.GetAttributeValue(attrTitle),
		JobLevel:   e.GetAttributeValue(attrEmployeeType),
		Role:       d.roleFor(e.GetAttributeValues(attrMemberOf)),
	}
}

// roleFor returns the highest level granted by any group, or the default.
func (d *Directory) roleFor(groups []string) int {
	role, found := 0, false
	for _, g := range groups {
		level, ok := d.cfg.RoleGroups[strings.ToLower(g)]
		if !ok {
			continue
		}
		if !found || level > role {
			role, found = level, true
		}
	}
	if !found {
		return d.cfg.DefaultRole
	}
	return role
}

package ldap

import (
	"errors"
	"fmt"
)

const (
	attrGivenName    = "givenName"
	attrSurname      = "sn"
	attrPhone        = "telephoneNumber"
	attrMail         = "mail"
	attrDepartment   = "department"
	attrTitle        = "title"
	attrEmployeeType = "employeeType"
	attrMemberOf     = "memberOf"

	domainSeparator = "@"

	errDialFmt        = "ldap: dial %s: %w"
	errStartTLSFmt    = "ldap: start tls: %w"
	errServiceBindFmt = "ldap: service bind: %w"
	errSearchFmt      = "ldap: search for %q: %w"
	errBindFmt        = "%w: %v"
)

var (
	ErrNotConfigured      = errors.New("ldap: directory url is not configured")
	ErrInvalidCredentials = errors.New("ldap: invalid credentials")
	ErrUserNotFound       = errors.New("ldap: user not found")
	ErrAmbiguousUser      = errors.New("ldap: search matched more than one entry")
)

var searchAttributes = []string{
	attrGivenName,
	attrSurname,
	attrPhone,
	attrMail,
	attrDepartment,
	attrTitle,
	attrEmployeeType,
	attrMemberOf,
}

var (
	errDial        = func(url string, err error) error { return fmt.Errorf(errDialFmt, url, err) }
	errStartTLS    = func(err error) error { return fmt.Errorf(errStartTLSFmt, err) }
	errServiceBind = func(err error) error { return fmt.Errorf(errServiceBindFmt, err) }
	errSearch      = func(id string, err error) error { return fmt.Errorf(errSearchFmt, id, err) }
)

package templates

import (
	"errors"
	"net/url"
	"strings"
)

const (
	passwordResetName       = "password-reset"
	defaultResetExpiryHours = 1
	schemeHTTP              = "http"
	schemeHTTPS             = "https"
)

var (
	ErrCompanyRequired  = errors.New("company is required")
	ErrResetURLRequired = errors.New("reset URL is required")
	ErrResetURLAbsolute = errors.New("reset URL must be absolute")
	ErrResetURLScheme   = errors.New("reset URL must use http or https")
)

type PasswordResetContext struct {
	Company     string
	UserName    string
	ResetURL    string
	ExpiryHours int
}

const passwordResetHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Company}} password reset</title></head>
<body style="font-family: Helvetica, Arial, sans-serif; color: #222; line-height: 1.5;">
<div style="max-width: 560px; margin: 0 auto; padding: 24px;">
	<h2 style="margin-top: 0;">{{.Company}}</h2>
	<p>Hello{{with .UserName}} {{.}}{{end}},</p>
	<p>Someone asked to reset the password for your account. If it was you, use the link below to choose a new one.</p>
	<p style="margin: 28px 0;"><a href="{{.ResetURL}}" style="background: #1f6feb; color: #fff; padding: 10px 22px; border-radius: 4px; text-decoration: none;">Choose a new password</a></p>
	<p style="font-size: 13px; color: #555;">{{.ResetURL}}</p>
	<p>The link stops working after {{.ExpiryHours}} hour{{if gt .ExpiryHours 1}}s{{end}} or once it has been used.</p>
	<p>If you did not ask for this, ignore this message. Your password stays the same.</p>
</div>
</body>
</html>
`

const passwordResetText = `{{.Company}} password reset

Hello{{with .UserName}} {{.}}{{end}},

Someone asked to reset the password for your account. If it was you, open this link to choose a new one:

{{.ResetURL}}

The link stops working after {{.ExpiryHours}} hour{{if gt .ExpiryHours 1}}s{{end}} or once it has been used.

If you did not ask for this, ignore this message. Your password stays the same.
`

func preparePasswordReset(c PasswordResetContext) (PasswordResetContext, error) {
	c.Company = strings.TrimSpace(c.Company)
	c.UserName = strings.TrimSpace(c.UserName)
	c.ResetURL = strings.TrimSpace(c.ResetURL)

	if c.Company == "" {
		return c, ErrCompanyRequired
	}
	if c.ResetURL == "" {
		return c, ErrResetURLRequired
	}
	u, err := url.Parse(c.ResetURL)
	if err != nil || !u.IsAbs() {
		return c, ErrResetURLAbsolute
	}
	if u.Scheme != schemeHTTP && u.Scheme != schemeHTTPS {
		return c, ErrResetURLScheme
	}
	if c.ExpiryHours <= 0 {
		c.ExpiryHours = defaultResetExpiryHours
	}
	return c, nil
}

func PasswordResetTemplate() (*TypedTemplate[PasswordResetContext], error) {
	return New(passwordResetName, passwordResetHTML, passwordResetText, preparePasswordReset)
}

package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountCreation    = errors.New("directory account could not be created")
	ErrInvalidPrincipal   = errors.New("invalid principal")
	ErrNoSession          = errors.New("no authenticated session")
	ErrAccessDenied       = errors.New("access denied")
	ErrResetNotIssued     = errors.New("password reset link not issued")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrVerificationFailed = errors.New("two-factor verification failed")
	ErrTwoFactorDisabled  = errors.New("two-factor authentication is not enabled")
	ErrPasswordRequired   = errors.New("password is required")
)

const (
	errCredentialStoreRequired = "auth: credential store is required"
	errRolesRequired           = "auth: role hierarchy is required"
	errMailerRequired          = "auth: mailer is required"
	errResetTemplateFmt        = "auth: build reset template: %w"
	errVerifyCredentialsFmt    = "%w: %v"
	errCreateDirectoryUserFmt  = "%w: %v"
	errFetchCreatedUserFmt     = "%w: refetch %s: %v"
	errWriteSessionFmt         = "auth: write session: %w"
	errResetStepFmt            = "%w: %s: %v"
	errChangePasswordFmt       = "auth: change password: %w"
	errLookupResetTokenFmt     = "auth: lookup reset token: %w"
	errGenerateSecretFmt       = "auth: generate totp secret: %w"
	errRequireRoleFmt          = "%w: requires one of %v"
)

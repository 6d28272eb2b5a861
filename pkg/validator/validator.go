package validator

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
	totpCodeLength    = 6
	maxResetTokenLen  = 128

	errEmailLengthFmt       = "email must be between %d and %d characters"
	errPasswordMinLengthFmt = "password must be at least %d characters"
	errPasswordMaxLengthFmt = "password must not exceed %d bytes"
)

var (
	ErrEmailEmpty         = errors.New("email cannot be empty")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrTOTPCodeInvalid    = errors.New("verification code must be 6 digits")
	ErrResetTokenInvalid  = errors.New("malformed reset token")
	ErrIdentifierRequired = errors.New("identifier cannot be empty")
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	totpRegex       = regexp.MustCompile(`^[0-9]+$`)
	resetTokenRegex = regexp.MustCompile(`^[a-z0-9]+$`)
)

func Email(email string) error {
	if email == "" {
		return ErrEmailEmpty
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}

	return nil
}

// Identifier accepts either an email or a bare directory account name.
func Identifier(identifier string) error {
	if identifier == "" {
		return ErrIdentifierRequired
	}
	if len(identifier) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}
	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func TOTPCode(code string) error {
	if len(code) != totpCodeLength || !totpRegex.MatchString(code) {
		return ErrTOTPCodeInvalid
	}
	return nil
}

// ResetToken checks the shape of a reset link token before it reaches storage.
func ResetToken(tok string) error {
	if tok == "" || len(tok) > maxResetTokenLen || !resetTokenRegex.MatchString(tok) {
		return ErrResetTokenInvalid
	}
	return nil
}

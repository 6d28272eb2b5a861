package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second
	applicationName       = "session-auth"
	statementTimeout      = "5000"

	defaultResetTokenTTL = time.Hour

	errUserNotFound       = "user not found"
	errResetTokenNotFound = "reset token not found or expired"
	errUserExists         = "user with this email already exists"
	errResetTokenInUse    = "reset token already in use"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedCreateUserFmt        = "failed to create user: %w"
	errFailedGetUserFmt           = "failed to get user: %w"
	errFailedUpdateUserFmt        = "failed to update user: %w"
	errFailedHashPasswordFmt      = "failed to hash password: %w"
	errFailedRehashPasswordFmt    = "failed to upgrade password hash: %w"
	errFailedSetResetTokenFmt     = "failed to set reset token: %w"
	errFailedCheckResetTokenFmt   = "failed to check reset token: %w"
	errFailedChangePasswordFmt    = "failed to change password: %w"
	errFailedRecordSessionFmt     = "failed to record session activity: %w"
	errFailedInvalidateSessionFmt = "failed to invalidate session: %w"
	errFailedCountSessionsFmt     = "failed to count sessions: %w"
)

var (
	errFailedChangePassword    = func(err error) error { return fmt.Errorf(errFailedChangePasswordFmt, err) }
	errFailedCheckResetToken   = func(err error) error { return fmt.Errorf(errFailedCheckResetTokenFmt, err) }
	errFailedCountSessions     = func(err error) error { return fmt.Errorf(errFailedCountSessionsFmt, err) }
	errFailedCreateConnPool    = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateUser        = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetUser           = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedHashPassword      = func(err error) error { return fmt.Errorf(errFailedHashPasswordFmt, err) }
	errFailedInvalidateSession = func(err error) error { return fmt.Errorf(errFailedInvalidateSessionFmt, err) }
	errFailedParseDBConfig     = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase      = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedRecordSession     = func(err error) error { return fmt.Errorf(errFailedRecordSessionFmt, err) }
	errFailedRehashPassword    = func(err error) error { return fmt.Errorf(errFailedRehashPasswordFmt, err) }
	errFailedSetResetToken     = func(err error) error { return fmt.Errorf(errFailedSetResetTokenFmt, err) }
	errFailedUpdateUser        = func(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
)

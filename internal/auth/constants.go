package auth

const (
	DefaultPwResetLimit      = 5
	DefaultResetTokenRetries = 3
	DefaultTOTPIssuer        = "session-auth"
	DefaultCompany           = "session-auth"
	DefaultTOTPPeriod        = 30
	DefaultResetPath         = "/auth/reset/"

	// ContextPasswordReset tags outgoing reset mail.
	ContextPasswordReset = "password_reset"

	resetStepPersist = "persist token"
	resetStepRender  = "render mail"
	resetStepSend    = "send mail"
)

const (
	msgDirectoryUnsupported    = "auth: directory login enabled but not supported by this runtime, using local credentials"
	msgDirectoryConnectFailed  = "auth: directory connect failed: %v"
	msgDirectoryBindFailed     = "auth: directory bind failed for %s, trying local credentials"
	msgDirectoryFetchFailed    = "auth: directory user %s could not be fetched: %v"
	msgDirectoryCreateFailed   = "auth: directory user creation failed for %s: %v"
	msgDirectoryUpdateFailed   = "auth: directory profile update failed for %s: %v"
	msgLocalVerifyFailed       = "auth: credential store error for %s: %v"
	msgUnknownStoredRole       = "auth: principal %s has unknown role %d"
	msgUnknownFilteredRole     = "auth: principal %s has unknown role %q after session filters"
	msgRecordActivityFailed    = "auth: session record for user %s not written: %v"
	msgInvalidateSessionFailed = "auth: session record %s not invalidated: %v"
	msgResetLookupFailed       = "auth: reset lookup failed: %v"
	msgResetLimitReached       = "auth: password reset limit reached for user %s"
	msgResetTokenCollision     = "auth: reset token collision, retrying (attempt %d)"
	msgResetNotIssued          = "auth: reset link for user %s not issued: %v"
	msgResetValidateFailed     = "auth: reset token validation failed: %v"
	msgTwoFactorFailed         = "auth: two-factor verification failed for user %s"
	msgResetSubjectFmt         = "%s password reset"
)

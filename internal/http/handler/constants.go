package handler

const (
	jsonKeyError     = "error"
	jsonKeyMessage   = "message"
	jsonKeyRequestID = "request_id"

	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidCredentials      = "invalid credentials"
	msgLoggedOut               = "logged out"
	msgResetRequested          = "if the account exists, a reset link has been sent"
	msgResetLinkInvalid        = "reset link is invalid or has expired"
	msgPasswordChanged         = "password changed"
	msgSessionUnavailable      = "session unavailable"
	msgInvalidQuery            = "invalid query parameters"

	msgResetRequestFailed = "reset request for %q not completed: %v"
)

package logger

import "regexp"

const redactedPlaceholder = "[REDACTED]"

// keyValueRules match "<name>[:= ]<value>" and keep the name.
var keyValueRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s,]+`),
	regexp.MustCompile(`(?i)(token|jwt|bearer)[\s:=]+[^\s,]+`),
	regexp.MustCompile(`(?i)(api[_-]?key)[\s:=]+[^\s,]+`),
	regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s,]+`),
	regexp.MustCompile(`(?i)(totp|otp|code)[\s:=]+\d{6}\b`),
	regexp.MustCompile(`(?i)(cookie|sid)[\s:=]+[^\s,]+`),
}

var (
	// Reset links carry the token as their last path segment.
	resetLinkPattern = regexp.MustCompile(`(/reset/)[A-Za-z0-9]+`)
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// SanitizeLogMessage removes credentials, one-time codes, session ids and
// reset tokens from message.
func SanitizeLogMessage(message string) string {
	for _, re := range keyValueRules {
		message = re.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	}
	return resetLinkPattern.ReplaceAllString(message, "${1}"+redactedPlaceholder)
}

// RedactEmails replaces email addresses in message
func RedactEmails(message string) string {
	return emailPattern.ReplaceAllString(message, redactedPlaceholder)
}

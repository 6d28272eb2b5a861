package logger

import "fmt"

// Logger is the leveled printf interface of github.com/labstack/gommon/log.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Sanitized formats each message and strips credentials before handing it
// to the wrapped logger.
type Sanitized struct {
	next         Logger
	redactEmails bool
}

func NewSanitized(next Logger, redactEmails bool) *Sanitized {
	return &Sanitized{next: next, redactEmails: redactEmails}
}

func (s *Sanitized) clean(format string, args []interface{}) string {
	msg := SanitizeLogMessage(fmt.Sprintf(format, args...))
	if s.redactEmails {
		msg = RedactEmails(msg)
	}
	return msg
}

func (s *Sanitized) Debugf(format string, args ...interface{}) {
	s.next.Debugf("%s", s.clean(format, args))
}

func (s *Sanitized) Infof(format string, args ...interface{}) {
	s.next.Infof("%s", s.clean(format, args))
}

func (s *Sanitized) Warnf(format string, args ...interface{}) {
	s.next.Warnf("%s", s.clean(format, args))
}

func (s *Sanitized) Errorf(format string, args ...interface{}) {
	s.next.Errorf("%s", s.clean(format, args))
}

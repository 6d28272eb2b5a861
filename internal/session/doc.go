// Package session holds server-side session state.
//
// A Context is the request-scoped handle on one browser session: it carries
// the session id and the named values loaded from a Store. The authenticated
// principal lives under KeyUserData as an AuthSession. Nothing here is a
// process-wide global; callers thread the Context explicitly.
package session

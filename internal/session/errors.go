package session

import "errors"

var ErrStoreUnavailable = errors.New("session store unavailable")

const (
	errDecodeValueFmt   = "session: decode %q: %w"
	errEncodeValueFmt   = "session: encode %q: %w"
	errLoadSessionFmt   = "session: load %s: %w"
	errSaveSessionFmt   = "session: save %s: %w"
	errDeleteSessionFmt = "session: delete %s: %w"
	errRedisAddrEmpty   = "session: redis addr is required"
)

// Package audit persists authentication events fed by engine hooks.
package audit

import (
	"context"
	"fmt"
	"time"

	"session-auth/internal/hooks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

const (
	writeTimeout = 2 * time.Second
	defaultLimit = 100

	msgAuditWriteFailedFmt = "audit: write %s event failed: %v"
)

// Event is one row of auth_audit_events.
type Event struct {
	ID         int64
	Event      string
	Identifier string
	UserID     *uuid.UUID
	Status     Status
	SessionID  string
	IPAddress  string
	UserAgent  string
	RequestID  string
	CreatedAt  time.Time
}

// RequestInfo describes the HTTP request that triggered an event.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type requestInfoKey struct{}

// WithRequest attaches request details picked up by the hook observer.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func requestFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type errorLogger interface {
	Errorf(format string, args ...interface{})
}

type Logger struct {
	db     DB
	logger errorLogger
	// async is false in tests so writes are observable synchronously.
	async bool
}

func NewLogger(db DB, logger errorLogger) *Logger {
	return &Logger{db: db, logger: logger, async: true}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO auth_audit_events (
			event, identifier, user_id, status, session_id,
			ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := l.db.Exec(ctx, query,
		event.Event,
		event.Identifier,
		event.UserID,
		event.Status,
		event.SessionID,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		event.CreatedAt,
	)
	return err
}

// Register subscribes the logger to every auditable hook event.
func (l *Logger) Register(r *hooks.Registry) {
	for _, ev := range []hooks.Event{
		hooks.AfterLoginCheck,
		hooks.AfterSessionDestroy,
		hooks.AfterTwoFactorCheck,
		hooks.AfterResetRequest,
	} {
		r.On(ev, l.observe)
	}
}

func (l *Logger) observe(ctx context.Context, ev hooks.Event, p hooks.Payload) {
	event := eventFromPayload(ev, p, requestFrom(ctx))

	write := func() {
		wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := l.Log(wctx, event); err != nil && l.logger != nil {
			l.logger.Errorf(msgAuditWriteFailedFmt, event.Event, err)
		}
	}

	if l.async {
		go write()
		return
	}
	write()
}

func eventFromPayload(ev hooks.Event, p hooks.Payload, info RequestInfo) *Event {
	event := &Event{
		Event:      ev.String(),
		Identifier: p.Identifier,
		Status:     StatusFailure,
		IPAddress:  info.IPAddress,
		UserAgent:  info.UserAgent,
		RequestID:  info.RequestID,
		CreatedAt:  time.Now(),
	}
	if p.Succeeded {
		event.Status = StatusSuccess
	}
	if p.UserID != uuid.Nil {
		id := p.UserID
		event.UserID = &id
	}
	if p.Session != nil {
		event.SessionID = p.Session.ID()
	}
	return event
}

// QueryFilter narrows Query results. Zero fields are ignored.
type QueryFilter struct {
	UserID    *uuid.UUID
	Event     string
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

func buildQuery(filter QueryFilter) (string, []any) {
	query := `
		SELECT id, event, identifier, user_id, status, session_id,
		       ip_address, user_agent, request_id, created_at
		FROM auth_audit_events
		WHERE 1=1
	`
	args := []any{}
	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.UserID != nil {
		add(" AND user_id = $%d", *filter.UserID)
	}
	if filter.Event != "" {
		add(" AND event = $%d", filter.Event)
	}
	if filter.Status != "" {
		add(" AND status = $%d", filter.Status)
	}
	if filter.StartTime != nil {
		add(" AND created_at >= $%d", *filter.StartTime)
	}
	if filter.EndTime != nil {
		add(" AND created_at <= $%d", *filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	add(" LIMIT $%d", limit)

	if filter.Offset > 0 {
		add(" OFFSET $%d", filter.Offset)
	}
	return query, args
}

// Query retrieves audit events, newest first
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	query, args := buildQuery(filter)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		err := rows.Scan(
			&event.ID,
			&event.Event,
			&event.Identifier,
			&event.UserID,
			&event.Status,
			&event.SessionID,
			&event.IPAddress,
			&event.UserAgent,
			&event.RequestID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

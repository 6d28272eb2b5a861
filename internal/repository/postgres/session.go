package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordSessionActivity upserts the last-seen time of a browser session.
func (r *UserRepository) RecordSessionActivity(ctx context.Context, userID uuid.UUID, sessionID string, at time.Time) error {
	query := `
		INSERT INTO user_sessions (session_id, user_id, last_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET user_id = EXCLUDED.user_id, last_seen_at = EXCLUDED.last_seen_at
	`

	if _, err := r.db.Pool.Exec(ctx, query, sessionID, userID, at); err != nil {
		return errFailedRecordSession(err)
	}
	return nil
}

// InvalidateSession drops the record for sessionID. Missing records are not
// an error.
func (r *UserRepository) InvalidateSession(ctx context.Context, sessionID string) error {
	query := `DELETE FROM user_sessions WHERE session_id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, sessionID); err != nil {
		return errFailedInvalidateSession(err)
	}
	return nil
}

// ActiveSessions counts the sessions of userID seen since the given time.
func (r *UserRepository) ActiveSessions(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1 AND last_seen_at >= $2`

	var n int
	if err := r.db.Pool.QueryRow(ctx, query, userID, since).Scan(&n); err != nil {
		return 0, errFailedCountSessions(err)
	}
	return n, nil
}

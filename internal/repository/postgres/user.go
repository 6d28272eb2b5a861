package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"session-auth/internal/domain/user"
	apperrors "session-auth/pkg/errors"
	"session-auth/pkg/password"
	"session-auth/pkg/token"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, email, first_name, last_name, phone,
	COALESCE(client_id, '00000000-0000-0000-0000-000000000000'::uuid),
	role, profile_id, settings, two_fa_enabled, two_fa_secret,
	source, department, job_title, job_level, status,
	password_hash, pw_reset_count, created_at, updated_at`

type UserRepositoryOptions struct {
	// ResetTokenTTL bounds how long a reset link stays usable.
	ResetTokenTTL time.Duration
	BcryptCost    int
}

// UserRepository is the credential store backed by the users table.
type UserRepository struct {
	db   *DB
	opts UserRepositoryOptions
}

func NewUserRepository(db *DB, opts UserRepositoryOptions) *UserRepository {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = defaultResetTokenTTL
	}
	if opts.BcryptCost < password.MinCost {
		opts.BcryptCost = password.DefaultCost
	}
	return &UserRepository{db: db, opts: opts}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.ClientID,
		&u.Role,
		&u.ProfileID,
		&u.Settings,
		&u.TwoFAEnabled,
		&u.TwoFASecret,
		&u.Source,
		&u.Department,
		&u.JobTitle,
		&u.JobLevel,
		&u.Status,
		&u.PasswordHash,
		&u.PwResetCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verify returns the active user whose password matches. Unknown accounts
// cost the same bcrypt comparison as wrong passwords.
func (r *UserRepository) Verify(ctx context.Context, identifier, secret string) (*user.User, error) {
	u, err := r.FindByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			password.VerifyDummy(secret)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if u.Status != user.StatusActive || u.PasswordHash == "" || !password.Verify(secret, u.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if needs, err := password.NeedsRehash(u.PasswordHash, r.opts.BcryptCost); err == nil && needs {
		if err := r.rehash(ctx, u, secret); err != nil {
			return nil, err
		}
	}

	return u, nil
}

func (r *UserRepository) rehash(ctx context.Context, u *user.User, secret string) error {
	hash, err := password.HashWithCost(secret, r.opts.BcryptCost)
	if err != nil {
		return errFailedHashPassword(err)
	}
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.Pool.Exec(ctx, query, hash, u.ID); err != nil {
		return errFailedRehashPassword(err)
	}
	u.PasswordHash = hash
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (uuid.UUID, error) {
	query := `
		INSERT INTO users (
			email, first_name, last_name, phone, client_id, role,
			department, job_title, job_level, password_hash, settings, source, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	status := input.Status
	if status == "" {
		status = user.StatusActive
	}

	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx, query,
		normalizeEmail(input.Email),
		input.FirstName,
		input.LastName,
		input.Phone,
		nullableUUID(input.ClientID),
		input.Role,
		input.Department,
		input.JobTitle,
		input.JobLevel,
		input.PasswordHash,
		input.Settings,
		input.Source,
		status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, apperrors.Conflict(errUserExists)
		}
		return uuid.Nil, errFailedCreateUser(err)
	}

	return id, nil
}

// Update writes the profile fields of u. Role, tenant and credentials are
// managed elsewhere.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			first_name = $1, last_name = $2, phone = $3,
			department = $4, job_title = $5, job_level = $6,
			profile_id = $7, settings = $8, updated_at = NOW()
		WHERE id = $9
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		u.FirstName, u.LastName, u.Phone,
		u.Department, u.JobTitle, u.JobLevel,
		u.ProfileID, u.Settings, u.ID,
	)
	if err != nil {
		return errFailedUpdateUser(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}
	return nil
}

// SetResetToken stores the digest of tok and counts the request.
func (r *UserRepository) SetResetToken(ctx context.Context, email, tok string) error {
	query := `
		UPDATE users SET
			pw_reset_digest = $1,
			pw_reset_expires_at = $2,
			pw_reset_count = pw_reset_count + 1,
			updated_at = NOW()
		WHERE email = $3
	`

	expires := time.Now().Add(r.opts.ResetTokenTTL)
	tag, err := r.db.Pool.Exec(ctx, query, token.Digest(tok), expires, normalizeEmail(email))
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errResetTokenInUse)
		}
		return errFailedSetResetToken(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}
	return nil
}

func (r *UserRepository) ValidateResetToken(ctx context.Context, tok string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE pw_reset_digest = $1 AND pw_reset_expires_at > NOW()
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, token.Digest(tok)).Scan(&exists); err != nil {
		return false, errFailedCheckResetToken(err)
	}
	return exists, nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tok string) (*user.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE pw_reset_digest = $1 AND pw_reset_expires_at > NOW()`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, token.Digest(tok)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errResetTokenNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

// ChangePasswordByToken sets a new password and consumes the token. The
// request counter starts over.
func (r *UserRepository) ChangePasswordByToken(ctx context.Context, newSecret, tok string) error {
	hash, err := password.HashWithCost(newSecret, r.opts.BcryptCost)
	if err != nil {
		return errFailedHashPassword(err)
	}

	query := `
		UPDATE users SET
			password_hash = $1,
			pw_reset_digest = NULL,
			pw_reset_expires_at = NULL,
			pw_reset_count = 0,
			updated_at = NOW()
		WHERE pw_reset_digest = $2 AND pw_reset_expires_at > NOW()
	`

	tag, err := r.db.Pool.Exec(ctx, query, hash, token.Digest(tok))
	if err != nil {
		return errFailedChangePassword(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errResetTokenNotFound)
	}
	return nil
}

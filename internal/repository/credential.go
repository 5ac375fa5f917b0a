package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicateToken     = errors.New("token already exists")
)

type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	Consume(ctx context.Context, token string) (*model.Credential, error)
	ByToken(ctx context.Context, token string) (*model.Credential, error)
	CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type credentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *model.Credential) error {
	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}
	if cred.IssuedAt.IsZero() {
		cred.IssuedAt = time.Now()
	}

	query := `
		INSERT INTO credentials (id, token, subject, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		cred.ID,
		cred.Token,
		cred.Subject,
		cred.IssuedAt,
		cred.ExpiresAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateToken
	}
	return err
}

// Consume atomically marks the credential as used and returns it.
// The check and the mutation are one conditional UPDATE, so concurrent
// requests on the same token are serialized by the database: exactly one
// caller gets a row back, every other caller gets ErrCredentialNotFound
// and must classify the denial via ByToken.
func (r *credentialRepository) Consume(ctx context.Context, token string) (*model.Credential, error) {
	var c model.Credential
	now := time.Now()

	query := `
		UPDATE credentials
		SET used_at = $1
		WHERE token = $2
		AND used_at IS NULL
		AND expires_at > $3
		RETURNING *
	`

	err := r.db.GetContext(ctx, &c, query, now, token, now)
	if err == sql.ErrNoRows {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ByToken reads a credential without touching it. Used only to produce a
// precise denial reason after Consume matched nothing - never to decide
// whether a consumption succeeds.
func (r *credentialRepository) ByToken(ctx context.Context, token string) (*model.Credential, error) {
	var c model.Credential
	query := `SELECT * FROM credentials WHERE token = $1`

	err := r.db.GetContext(ctx, &c, query, token)
	if err == sql.ErrNoRows {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CleanupExpired removes used and expired credentials older than the given
// duration. Credentials are NOT deleted on use; repeated redemption attempts
// must keep reporting "already used" and the audit trail references them.
// Call this periodically (e.g. via cron) only if retention policy demands it.
func (r *credentialRepository) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	query := `
		DELETE FROM credentials
		WHERE (used_at IS NOT NULL AND used_at < $1)
		   OR (expires_at < $1)
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// isUniqueViolation matches the UNIQUE(token) constraint error across the
// supported drivers (sqlite and pgx report it differently).
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

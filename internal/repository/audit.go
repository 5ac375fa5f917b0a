package repository

import (
	"context"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AuditRepository interface {
	Append(ctx context.Context, rec *model.AuditRecord) error
	Recent(ctx context.Context, limit int) ([]*model.AuditRecord, error)
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append inserts one trace entry. The table is append-only: nothing in the
// codebase updates or deletes audit rows.
func (r *auditRepository) Append(ctx context.Context, rec *model.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO audit_log (id, action, token_prefix, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Action,
		rec.TokenPrefix,
		rec.Subject,
		rec.Detail,
		rec.CreatedAt,
	)
	return err
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]*model.AuditRecord, error) {
	var recs []*model.AuditRecord
	query := `
		SELECT * FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &recs, query, limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

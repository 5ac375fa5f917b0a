package repository

import (
	"context"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/jmoiron/sqlx"
)

type FootnoteRepository interface {
	Upsert(ctx context.Context, fn *model.Footnote) error
	List(ctx context.Context) ([]*model.Footnote, error)
}

type footnoteRepository struct {
	db *sqlx.DB
}

func NewFootnoteRepository(db *sqlx.DB) FootnoteRepository {
	return &footnoteRepository{db: db}
}

// Upsert refreshes a lineage record in place; feeds call this on every
// successful fetch so retrieved_at tracks the latest pull.
func (r *footnoteRepository) Upsert(ctx context.Context, fn *model.Footnote) error {
	if fn.RetrievedAt.IsZero() {
		fn.RetrievedAt = time.Now()
	}

	query := `
		INSERT INTO footnotes (id, label, source, refresh, transform, retrieved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			label = excluded.label,
			source = excluded.source,
			refresh = excluded.refresh,
			transform = excluded.transform,
			retrieved_at = excluded.retrieved_at
	`
	_, err := r.db.ExecContext(ctx, query,
		fn.ID,
		fn.Label,
		fn.Source,
		fn.Refresh,
		fn.Transform,
		fn.RetrievedAt,
	)
	return err
}

func (r *footnoteRepository) List(ctx context.Context) ([]*model.Footnote, error) {
	var fns []*model.Footnote
	query := `SELECT * FROM footnotes ORDER BY id`

	err := r.db.SelectContext(ctx, &fns, query)
	if err != nil {
		return nil, err
	}
	return fns, nil
}

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditAppendAndRecent(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, &model.AuditRecord{
			Action:      model.AuditTokenIssued,
			TokenPrefix: fmt.Sprintf("sut_%08d", i),
			Subject:     "lp@example.com",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	recs, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Newest first
	assert.Equal(t, "sut_00000004", recs[0].TokenPrefix)
	assert.Equal(t, "sut_00000003", recs[1].TokenPrefix)
	assert.Equal(t, "sut_00000002", recs[2].TokenPrefix)
}

func TestAuditAppendFillsDefaults(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t))
	ctx := context.Background()

	rec := &model.AuditRecord{Action: model.AuditTokenConsumed, TokenPrefix: "sut_deadbeef"}
	require.NoError(t, repo.Append(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	recs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
}

package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coastaloak/livedeck/internal/db"
	"github.com/coastaloak/livedeck/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	return database
}

func newCredential(subject string, expiresIn time.Duration) *model.Credential {
	now := time.Now()
	return &model.Credential{
		Token:     "sut_" + subject + "_" + now.Format("150405.000000000"),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestCredentialCreateAndByToken(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	cred := newCredential("alice@example.com", time.Hour)
	err := repo.Create(ctx, cred)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.ID)

	got, err := repo.ByToken(ctx, cred.Token)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, got.Token)
	assert.Equal(t, "alice@example.com", got.Subject)
	assert.Nil(t, got.UsedAt)
	assert.True(t, got.IsValid())
}

func TestCredentialCreateDuplicateToken(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	cred := newCredential("alice@example.com", time.Hour)
	require.NoError(t, repo.Create(ctx, cred))

	dup := newCredential("bob@example.com", time.Hour)
	dup.Token = cred.Token
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestCredentialConsume(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	cred := newCredential("alice@example.com", time.Hour)
	require.NoError(t, repo.Create(ctx, cred))

	got, err := repo.Consume(ctx, cred.Token)
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)
	assert.True(t, got.IsUsed())

	// Second consumption matches nothing
	_, err = repo.Consume(ctx, cred.Token)
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	// But the row survives for classification and audit
	kept, err := repo.ByToken(ctx, cred.Token)
	require.NoError(t, err)
	assert.True(t, kept.IsUsed())
}

func TestCredentialConsumeUnknown(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	_, err := repo.Consume(context.Background(), "sut_doesnotexist")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestCredentialConsumeExpired(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	cred := newCredential("alice@example.com", -time.Second)
	require.NoError(t, repo.Create(ctx, cred))

	_, err := repo.Consume(ctx, cred.Token)
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	// Still unused: expiry, not consumption, blocked it
	got, err := repo.ByToken(ctx, cred.Token)
	require.NoError(t, err)
	assert.False(t, got.IsUsed())
	assert.True(t, got.IsExpired())
}

func TestCredentialConsumeConcurrent(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	cred := newCredential("alice@example.com", time.Hour)
	require.NoError(t, repo.Create(ctx, cred))

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Consume(ctx, cred.Token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, denied int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, ErrCredentialNotFound)
			denied++
		}
	}

	assert.Equal(t, 1, successes, "exactly one caller may win")
	assert.Equal(t, callers-1, denied)
}

func TestCredentialCleanupExpired(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))
	ctx := context.Background()

	old := newCredential("old@example.com", -48*time.Hour)
	fresh := newCredential("fresh@example.com", time.Hour)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	removed, err := repo.CleanupExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.ByToken(ctx, old.Token)
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	_, err = repo.ByToken(ctx, fresh.Token)
	assert.NoError(t, err)
}

package service

import (
	"context"
	"testing"

	"github.com/coastaloak/livedeck/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBankService(t *testing.T) *BankService {
	t.Helper()
	return NewBankService(repository.NewFootnoteRepository(newTestDB(t)))
}

func TestBankList(t *testing.T) {
	svc := newBankService(t)
	ctx := context.Background()

	all := svc.List(ctx, "", "")
	require.Len(t, all, 3)
	for _, b := range all {
		assert.Nil(t, b.Exposure, "listings omit the exposure breakdown")
	}

	regionals := svc.List(ctx, "", "regional")
	assert.Len(t, regionals, 2)

	west := svc.List(ctx, "west", "")
	require.Len(t, west, 1)
	assert.Equal(t, "bk1", west[0].ID)

	assert.Empty(t, svc.List(ctx, "North", ""))
}

func TestBankByID(t *testing.T) {
	svc := newBankService(t)

	bank, err := svc.ByID("bk2")
	require.NoError(t, err)
	assert.Equal(t, "Community Beta", bank.Name)
	assert.NotNil(t, bank.Exposure)

	_, err = svc.ByID("bk999")
	assert.ErrorIs(t, err, ErrBankNotFound)
}

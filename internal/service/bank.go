package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/repository"
)

var ErrBankNotFound = errors.New("bank not found")

// BankService serves lender exposure profiles. The data set is fixed at
// construction (FDIC call-report placeholder rows) and read-only afterwards.
type BankService struct {
	footnotes repository.FootnoteRepository
	banks     []model.Bank
}

func NewBankService(footnotes repository.FootnoteRepository) *BankService {
	return &BankService{
		footnotes: footnotes,
		banks: []model.Bank{
			{ID: "bk1", Name: "Regional Alpha", Type: "regional", Region: "West", CREShare: 31.2,
				Exposure: map[string]float64{"mf": 22, "off": 38, "ind": 24, "other": 16}},
			{ID: "bk2", Name: "Community Beta", Type: "community", Region: "South", CREShare: 44.5,
				Exposure: map[string]float64{"mf": 28, "off": 34, "ind": 18, "other": 20}},
			{ID: "bk3", Name: "Regional Gamma", Type: "regional", Region: "Midwest", CREShare: 27.9,
				Exposure: map[string]float64{"mf": 20, "off": 30, "ind": 30, "other": 20}},
		},
	}
}

// List filters by region and type; empty filters match everything.
// Exposure breakdowns are omitted from listings.
func (s *BankService) List(ctx context.Context, region, bankType string) []model.Bank {
	var out []model.Bank
	for _, b := range s.banks {
		if region != "" && !strings.EqualFold(b.Region, region) {
			continue
		}
		if bankType != "" && !strings.EqualFold(b.Type, bankType) {
			continue
		}
		b.Exposure = nil
		out = append(out, b)
	}

	err := s.footnotes.Upsert(ctx, &model.Footnote{
		ID: "B1", Label: "Bank exposure metrics (placeholder)",
		Source: "FDIC Call Reports", Refresh: "Quarterly", Transform: "latest available",
	})
	if err != nil {
		slog.Warn("footnote upsert failed", "id", "B1", "error", err)
	}

	return out
}

func (s *BankService) ByID(id string) (*model.Bank, error) {
	for _, b := range s.banks {
		if b.ID == id {
			bank := b
			return &bank, nil
		}
	}
	return nil, ErrBankNotFound
}

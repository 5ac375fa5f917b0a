package service

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	fredObservationsURL = "https://api.stlouisfed.org/fred/series/observations"
	treasuryCurveURL    = "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/pages/xml"
)

// Pinned fallback figures, used whenever a live fetch is unavailable.
// Content accuracy is not the point; the plumbing and lineage are.
var (
	mockFred  = fredPoint{Value: 5.33, Date: "2025-06-01", Source: "mock"}
	mockCurve = curvePoint{T5: 4.50, T10: 4.49, T30: 4.66, Date: "2025-06-01", Source: "fallback"}
)

type fredPoint struct {
	Value  float64
	Date   string
	Source string
}

type curvePoint struct {
	T5     float64
	T10    float64
	T30    float64
	Date   string
	Source string
}

// MarketService fetches the market figures the deck interpolates: the
// effective federal funds rate from FRED and the Treasury yield curve.
// Live fetches are cached with a TTL and degrade silently to pinned
// fallback values; every refresh updates the footnote lineage registry.
type MarketService struct {
	footnotes  repository.FootnoteRepository
	client     *http.Client
	fredAPIKey string
	cacheTTL   time.Duration

	mu         sync.Mutex
	fred       fredPoint
	fredExp    time.Time
	curve      curvePoint
	curveExp   time.Time
	fredLive   func(ctx context.Context) (fredPoint, error)
	curveLive  func(ctx context.Context) (curvePoint, error)
}

func NewMarketService(footnotes repository.FootnoteRepository, fredAPIKey string, cacheTTL, httpTimeout time.Duration) *MarketService {
	s := &MarketService{
		footnotes:  footnotes,
		client:     &http.Client{Timeout: httpTimeout},
		fredAPIKey: fredAPIKey,
		cacheTTL:   cacheTTL,
	}
	s.fredLive = s.fetchFredLive
	s.curveLive = s.fetchCurveLive
	return s
}

// SeedFootnotes writes the static lineage notes at startup; feed refreshes
// update them at runtime.
func (s *MarketService) SeedFootnotes(ctx context.Context) error {
	seeds := []*model.Footnote{
		{ID: "T1", Label: "Treasury yield curve (5y/10y/30y)", Source: "Treasury XML", Refresh: "Daily", Transform: "latest close"},
		{ID: "F1", Label: "Effective Federal Funds Rate (DFF)", Source: "FRED API", Refresh: "Daily", Transform: "latest observation"},
		{ID: "M1", Label: "CRE maturities by asset type (placeholder)", Source: "Vendor feed pending (Trepp/MSCI)", Refresh: "Quarterly", Transform: "rolling sum"},
		{ID: "B1", Label: "Bank exposure metrics (placeholder)", Source: "FDIC Call Reports", Refresh: "Quarterly", Transform: "latest available"},
	}

	for _, fn := range seeds {
		err := s.footnotes.Upsert(ctx, fn)
		if err != nil {
			return fmt.Errorf("failed to seed footnote %s: %w", fn.ID, err)
		}
	}
	return nil
}

// Rates returns the current snapshot, fetching both series concurrently.
// Never fails on feed errors - callers always get usable figures.
func (s *MarketService) Rates(ctx context.Context) (*model.RateSnapshot, error) {
	var fred fredPoint
	var curve curvePoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fred = s.fredRate(gctx)
		return nil
	})
	g.Go(func() error {
		curve = s.treasuryCurve(gctx)
		return nil
	})
	_ = g.Wait()

	s.touchFootnote(ctx, "F1", "Effective Federal Funds Rate (DFF)", "FRED API", "Daily", "latest observation")
	s.touchFootnote(ctx, "T1", "Treasury yield curve (5y/10y/30y)", "Treasury XML", "Daily", "latest close")

	asOf := curve.Date
	if asOf == "" {
		asOf = fred.Date
	}

	return &model.RateSnapshot{
		FFR:     fred.Value,
		FFRDate: fred.Date,
		T5:      curve.T5,
		T10:     curve.T10,
		T30:     curve.T30,
		AsOf:    asOf,
		Sources: map[string]string{"F1": fred.Source, "T1": curve.Source},
	}, nil
}

func (s *MarketService) fredRate(ctx context.Context) fredPoint {
	s.mu.Lock()
	if s.fredExp.After(time.Now()) {
		p := s.fred
		s.mu.Unlock()
		return p
	}
	s.mu.Unlock()

	p, err := s.fredLiveOrMock(ctx)

	s.mu.Lock()
	s.fred = p
	s.fredExp = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()

	if err != nil {
		slog.Debug("fred fetch fell back", "error", err, "source", p.Source)
	}
	return p
}

func (s *MarketService) fredLiveOrMock(ctx context.Context) (fredPoint, error) {
	if s.fredAPIKey == "" {
		return mockFred, nil
	}
	p, err := s.fredLive(ctx)
	if err != nil {
		fallback := mockFred
		fallback.Source = "fallback"
		return fallback, err
	}
	return p, nil
}

func (s *MarketService) treasuryCurve(ctx context.Context) curvePoint {
	s.mu.Lock()
	if s.curveExp.After(time.Now()) {
		p := s.curve
		s.mu.Unlock()
		return p
	}
	s.mu.Unlock()

	p, err := s.curveLive(ctx)
	if err != nil {
		p = mockCurve
		slog.Debug("treasury fetch fell back", "error", err)
	}

	s.mu.Lock()
	s.curve = p
	s.curveExp = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()

	return p
}

func (s *MarketService) fetchFredLive(ctx context.Context) (fredPoint, error) {
	q := url.Values{}
	q.Set("series_id", "DFF")
	q.Set("api_key", s.fredAPIKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fredObservationsURL+"?"+q.Encode(), nil)
	if err != nil {
		return fredPoint{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fredPoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fredPoint{}, fmt.Errorf("fred returned status %d", resp.StatusCode)
	}

	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return fredPoint{}, err
	}
	if len(payload.Observations) == 0 {
		return fredPoint{}, errors.New("fred returned no observations")
	}

	latest := payload.Observations[0]
	v, err := strconv.ParseFloat(latest.Value, 64)
	if err != nil {
		return fredPoint{}, fmt.Errorf("fred observation not numeric: %q", latest.Value)
	}

	return fredPoint{Value: v, Date: latest.Date, Source: "live"}, nil
}

type curveRecord struct {
	NewDate    string `xml:"new_date"`
	RecordDate string `xml:"record_date"`
	BC5        string `xml:"bc_5year"`
	BC10       string `xml:"bc_10year"`
	BC30       string `xml:"bc_30year"`
}

func (s *MarketService) fetchCurveLive(ctx context.Context) (curvePoint, error) {
	q := url.Values{}
	q.Set("data", "daily_treasury_yield_curve")
	q.Set("field_tdr_date_value", strconv.Itoa(time.Now().Year()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, treasuryCurveURL+"?"+q.Encode(), nil)
	if err != nil {
		return curvePoint{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return curvePoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return curvePoint{}, fmt.Errorf("treasury returned status %d", resp.StatusCode)
	}

	last, err := lastCurveRecord(resp.Body)
	if err != nil {
		return curvePoint{}, err
	}

	date := last.NewDate
	if date == "" {
		date = last.RecordDate
	}

	return curvePoint{
		T5:     parseYield(last.BC5),
		T10:    parseYield(last.BC10),
		T30:    parseYield(last.BC30),
		Date:   date,
		Source: "live",
	}, nil
}

// lastCurveRecord scans the Treasury feed for <record> elements at any
// depth and keeps the newest (the feed appends chronologically).
func lastCurveRecord(r io.Reader) (*curveRecord, error) {
	dec := xml.NewDecoder(r)
	var last *curveRecord

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}
		var rec curveRecord
		err = dec.DecodeElement(&rec, &start)
		if err != nil {
			return nil, err
		}
		last = &rec
	}

	if last == nil {
		return nil, errors.New("treasury feed had no records")
	}
	return last, nil
}

func parseYield(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Maturities returns the CRE maturity wall rows. Placeholder data shaped
// for a later Trepp/MSCI swap.
func (s *MarketService) Maturities(ctx context.Context) []model.MaturityRow {
	s.touchFootnote(ctx, "M1", "CRE maturities by asset type (placeholder)", "Vendor feed pending (Trepp/MSCI)", "Quarterly", "rolling sum")

	return []model.MaturityRow{
		{Year: 2025, Multifam: 38, Office: 29, Industrial: 14, Other: 19},
		{Year: 2026, Multifam: 32, Office: 31, Industrial: 18, Other: 19},
		{Year: 2027, Multifam: 28, Office: 26, Industrial: 22, Other: 24},
	}
}

func (s *MarketService) touchFootnote(ctx context.Context, id, label, source, refresh, transform string) {
	err := s.footnotes.Upsert(ctx, &model.Footnote{
		ID:        id,
		Label:     label,
		Source:    source,
		Refresh:   refresh,
		Transform: transform,
	})
	if err != nil {
		slog.Warn("footnote upsert failed", "id", id, "error", err)
	}
}

// Footnotes lists the lineage registry.
func (s *MarketService) Footnotes(ctx context.Context) ([]*model.Footnote, error) {
	fns, err := s.footnotes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list footnotes: %w", err)
	}
	return fns, nil
}

// ProbeLive reports per-dependency reachability for /healthz/deps,
// bypassing the cache.
func (s *MarketService) ProbeLive(ctx context.Context) map[string]bool {
	deps := map[string]bool{"fred": false, "treasury": false}

	if s.fredAPIKey != "" {
		_, err := s.fredLive(ctx)
		deps["fred"] = err == nil
	}
	_, err := s.curveLive(ctx)
	deps["treasury"] = err == nil

	return deps
}

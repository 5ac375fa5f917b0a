package model

// RateSnapshot is the interpolation payload for the deck: the effective
// federal funds rate plus the 5y/10y/30y Treasury closes.
type RateSnapshot struct {
	FFR     float64 `json:"ffr"`
	FFRDate string  `json:"ffr_date"`
	T5      float64 `json:"t5"`
	T10     float64 `json:"t10"`
	T30     float64 `json:"t30"`
	AsOf    string  `json:"asOf"`
	// Sources maps footnote ids to "live", "fallback" or "mock".
	Sources map[string]string `json:"sources"`
}

// MaturityRow is a CRE maturity-wall slice by asset type, in $B.
// Placeholder rows structure-compatible with a Trepp/MSCI feed.
type MaturityRow struct {
	Year       int     `json:"year"`
	Multifam   float64 `json:"mf"`
	Office     float64 `json:"off"`
	Industrial float64 `json:"ind"`
	Other      float64 `json:"other"`
}

// Bank is a lender exposure profile (FDIC call-report shaped).
type Bank struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Region   string             `json:"region"`
	CREShare float64            `json:"creShare"`
	Exposure map[string]float64 `json:"exposure,omitempty"`
}

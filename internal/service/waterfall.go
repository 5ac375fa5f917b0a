package service

import (
	"math"
)

// WaterfallTerms are the fund economics used by the simplified waterfall.
// Zero values take the standard 2/8/60-40 defaults.
type WaterfallTerms struct {
	MgmtFee  float64 `json:"mgmtFee"`
	Pref     float64 `json:"pref"`
	SplitLP  float64 `json:"splitLP"`
	SplitGP  float64 `json:"splitGP"`
	GrossIRR float64 `json:"grossIRR"`
}

type WaterfallInputs struct {
	WaterfallTerms
	Cashflows []float64 `json:"cashflows"`
}

type WaterfallOutputs struct {
	LPNetIRR    float64 `json:"lpNetIRR"`
	GPCarry     float64 `json:"gpCarry"`
	FeeDrag     float64 `json:"feeDrag"`
	OverPref    float64 `json:"overPref"`
	ComputedIRR float64 `json:"computedIRR"`
}

type WaterfallResult struct {
	Inputs  WaterfallInputs  `json:"inputs"`
	Outputs WaterfallOutputs `json:"outputs"`
	Note    string           `json:"note"`
}

// WaterfallService computes the simplified LP/GP split shown in the deck.
// Not a time-phased engine; the note in every result says so.
type WaterfallService struct{}

func NewWaterfallService() *WaterfallService {
	return &WaterfallService{}
}

func (s *WaterfallService) Calculate(terms WaterfallTerms, cashflows []float64) WaterfallResult {
	if terms.MgmtFee == 0 {
		terms.MgmtFee = 0.02
	}
	if terms.Pref == 0 {
		terms.Pref = 0.08
	}
	if terms.SplitLP == 0 {
		terms.SplitLP = 0.6
	}
	if terms.SplitGP == 0 {
		terms.SplitGP = 0.4
	}
	if terms.GrossIRR == 0 {
		terms.GrossIRR = 0.18
	}

	computedIRR := terms.GrossIRR
	if len(cashflows) > 0 {
		irr, ok := IRR(cashflows)
		if ok {
			computedIRR = irr
		}
	}

	feeDrag := terms.MgmtFee
	overPref := math.Max(0, computedIRR-terms.Pref)
	lpNet := terms.Pref + overPref*terms.SplitLP - feeDrag
	gpCarry := overPref * terms.SplitGP

	return WaterfallResult{
		Inputs: WaterfallInputs{WaterfallTerms: terms, Cashflows: cashflows},
		Outputs: WaterfallOutputs{
			LPNetIRR:    round4(lpNet),
			GPCarry:     round4(gpCarry),
			FeeDrag:     round4(feeDrag),
			OverPref:    round4(overPref),
			ComputedIRR: round4(computedIRR),
		},
		Note: "Simplified waterfall; replace with time-phased engine for production.",
	}
}

// IRR computes the internal rate of return for equal-period cashflows by
// Newton iteration. ok is false when the iteration does not converge or
// the cashflows carry no information.
func IRR(cashflows []float64) (irr float64, ok bool) {
	if len(cashflows) == 0 {
		return 0, false
	}
	allZero := true
	for _, c := range cashflows {
		if c != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return 0, false
	}

	const (
		maxIter = 100
		tol     = 1e-6
	)

	r := 0.1
	for i := 0; i < maxIter; i++ {
		var npv, dnpv float64
		for t, c := range cashflows {
			denom := math.Pow(1+r, float64(t))
			npv += c / denom
			if denom != 0 {
				dnpv -= float64(t) * c / denom / (1 + r)
			}
		}
		if math.Abs(dnpv) < 1e-12 {
			break
		}
		step := npv / dnpv
		r -= step
		if math.Abs(step) < tol && !math.IsInf(r, 0) && !math.IsNaN(r) {
			return r, true
		}
	}
	return 0, false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

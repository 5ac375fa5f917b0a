package agent

import (
	"context"

	"github.com/coastaloak/livedeck/internal/service"
)

// DataStewardAgent refreshes the live figures. The only agent that does
// real work; the rest return financial boilerplate.
type DataStewardAgent struct {
	market *service.MarketService
}

func NewDataStewardAgent(market *service.MarketService) *DataStewardAgent {
	return &DataStewardAgent{market: market}
}

func (a *DataStewardAgent) Name() string      { return "Data Steward" }
func (a *DataStewardAgent) Handles() []string { return []string{"data"} }

func (a *DataStewardAgent) Run(ctx context.Context, req Request) (Packet, error) {
	rates, err := a.market.Rates(ctx)
	if err != nil {
		return Packet{}, err
	}
	maturities := a.market.Maturities(ctx)

	return Packet{
		Name:              "Data Packet",
		ExecutiveTakeaway: "Rates and maturities refreshed.",
		Findings: map[string]any{
			"rates":      rates,
			"maturities": maturities,
		},
		Footnotes: []string{"F1", "T1", "M1", "B1"},
	}, nil
}

// QuantAgent summarizes the fund economics with default terms.
type QuantAgent struct {
	waterfall *service.WaterfallService
}

func NewQuantAgent(waterfall *service.WaterfallService) *QuantAgent {
	return &QuantAgent{waterfall: waterfall}
}

func (a *QuantAgent) Name() string      { return "Quant" }
func (a *QuantAgent) Handles() []string { return []string{"quant", "waterfall"} }

func (a *QuantAgent) Run(ctx context.Context, req Request) (Packet, error) {
	result := a.waterfall.Calculate(service.WaterfallTerms{}, nil)

	return Packet{
		Name:              "Waterfall Packet",
		ExecutiveTakeaway: "Indicative LP net IRR under standard terms.",
		Findings: map[string]any{
			"waterfall": result.Outputs,
		},
	}, nil
}

// DebtAgent returns the credit-strategy boilerplate block.
type DebtAgent struct{}

func NewDebtAgent() *DebtAgent { return &DebtAgent{} }

func (a *DebtAgent) Name() string      { return "Debt Strategist" }
func (a *DebtAgent) Handles() []string { return []string{"debt", "credit"} }

func (a *DebtAgent) Run(ctx context.Context, req Request) (Packet, error) {
	return Packet{
		Name:              "Debt Packet",
		ExecutiveTakeaway: "Maturity wall concentrated in office and multifamily through 2027.",
		Findings: map[string]any{
			"thesis": "Acquire discounted notes from lenders reducing CRE concentration; " +
				"resolve via restructuring or deed-in-lieu.",
		},
		Footnotes: []string{"M1", "B1"},
	}, nil
}

// LegalRiskAgent returns the standard disclaimers block.
type LegalRiskAgent struct{}

func NewLegalRiskAgent() *LegalRiskAgent { return &LegalRiskAgent{} }

func (a *LegalRiskAgent) Name() string      { return "Legal & Risk" }
func (a *LegalRiskAgent) Handles() []string { return []string{"legal", "risk"} }

func (a *LegalRiskAgent) Run(ctx context.Context, req Request) (Packet, error) {
	return Packet{
		Name:              "Legal Packet",
		ExecutiveTakeaway: "Standard confidentiality and forward-looking statement disclaimers apply.",
		Findings: map[string]any{
			"disclaimer": "For discussion purposes only. Not an offer to sell securities. " +
				"Projections are illustrative and not guarantees of performance.",
		},
	}, nil
}

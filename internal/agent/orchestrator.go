package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coastaloak/livedeck/internal/service"
)

// Response is the assembled result of one dispatch.
type Response struct {
	Summary          string            `json:"summary"`
	Packets          []Packet          `json:"packets"`
	FootnoteRegister map[string]string `json:"footnoteRegister"`
}

// Orchestrator fans a request out to the agents its tags select and
// flattens the footnote registry into the response.
type Orchestrator struct {
	registry *Registry
	market   *service.MarketService
}

func NewOrchestrator(registry *Registry, market *service.MarketService) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		market:   market,
	}
}

func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Response, error) {
	agents := o.registry.Pick(req.Tags)

	packets := make([]Packet, 0, len(agents))
	for _, a := range agents {
		packet, err := a.Run(ctx, req)
		if err != nil {
			slog.Warn("agent failed, skipping packet", "agent", a.Name(), "error", err)
			continue
		}
		packets = append(packets, packet)
	}

	register := make(map[string]string)
	footnotes, err := o.market.Footnotes(ctx)
	if err != nil {
		slog.Warn("footnote register unavailable", "error", err)
	} else {
		for _, fn := range footnotes {
			register[fn.ID] = fmt.Sprintf("%s | %s | %s | %s | %s",
				fn.Label, fn.Source, fn.RetrievedAt.UTC().Format("2006-01-02T15:04:05Z"), fn.Refresh, fn.Transform)
		}
	}

	return &Response{
		Summary:          fmt.Sprintf("Completed %d packets for '%s'.", len(packets), req.Objective),
		Packets:          packets,
		FootnoteRegister: register,
	}, nil
}

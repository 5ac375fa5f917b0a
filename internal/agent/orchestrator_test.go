package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coastaloak/livedeck/internal/db"
	"github.com/coastaloak/livedeck/internal/repository"
	"github.com/coastaloak/livedeck/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarket(t *testing.T) *service.MarketService {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	return service.NewMarketService(repository.NewFootnoteRepository(database), "", time.Hour, time.Second)
}

func newTestRegistry(market *service.MarketService) *Registry {
	return NewRegistry(
		NewDataStewardAgent(market),
		NewQuantAgent(service.NewWaterfallService()),
		NewDebtAgent(),
		NewLegalRiskAgent(),
	)
}

func TestRegistryPick(t *testing.T) {
	registry := newTestRegistry(newTestMarket(t))

	picked := registry.Pick([]string{"debt"})
	require.Len(t, picked, 1)
	assert.Equal(t, "Debt Strategist", picked[0].Name())

	picked = registry.Pick([]string{"waterfall", "legal"})
	require.Len(t, picked, 2)
	assert.Equal(t, "Quant", picked[0].Name())
	assert.Equal(t, "Legal & Risk", picked[1].Name())

	assert.Empty(t, registry.Pick([]string{"unknown"}))
	assert.Empty(t, registry.Pick(nil))
}

func TestRegistryList(t *testing.T) {
	registry := newTestRegistry(newTestMarket(t))

	infos := registry.List()
	require.Len(t, infos, 4)
	assert.Equal(t, "Data Steward", infos[0].Name)
	assert.Equal(t, []string{"data"}, infos[0].Handles)
	assert.Equal(t, []string{"quant", "waterfall"}, infos[1].Handles)
}

func TestOrchestratorExecute(t *testing.T) {
	market := newTestMarket(t)
	require.NoError(t, market.SeedFootnotes(context.Background()))

	orchestrator := NewOrchestrator(newTestRegistry(market), market)

	resp, err := orchestrator.Execute(context.Background(), Request{
		Objective: "credit diligence",
		Tags:      []string{"debt", "risk"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Completed 2 packets for 'credit diligence'.", resp.Summary)
	require.Len(t, resp.Packets, 2)
	assert.Equal(t, "Debt Packet", resp.Packets[0].Name)
	assert.Equal(t, "Legal Packet", resp.Packets[1].Name)
	assert.Equal(t, []string{"M1", "B1"}, resp.Packets[0].Footnotes)

	require.Len(t, resp.FootnoteRegister, 4)
	assert.Contains(t, resp.FootnoteRegister["F1"], "Effective Federal Funds Rate (DFF) | FRED API | ")
	assert.Contains(t, resp.FootnoteRegister["F1"], " | Daily | latest observation")
}

func TestOrchestratorExecuteNoMatches(t *testing.T) {
	market := newTestMarket(t)
	orchestrator := NewOrchestrator(newTestRegistry(market), market)

	resp, err := orchestrator.Execute(context.Background(), Request{Objective: "noop", Tags: []string{"hr"}})
	require.NoError(t, err)

	assert.Empty(t, resp.Packets)
	assert.Equal(t, "Completed 0 packets for 'noop'.", resp.Summary)
}

func TestQuantAgentPacket(t *testing.T) {
	agent := NewQuantAgent(service.NewWaterfallService())

	packet, err := agent.Run(context.Background(), Request{Tags: []string{"quant"}})
	require.NoError(t, err)
	assert.Equal(t, "Waterfall Packet", packet.Name)

	outputs, ok := packet.Findings["waterfall"].(service.WaterfallOutputs)
	require.True(t, ok)
	assert.Equal(t, 0.12, outputs.LPNetIRR)
}

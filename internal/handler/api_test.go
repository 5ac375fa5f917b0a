package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/coastaloak/livedeck/internal/agent"
	"github.com/coastaloak/livedeck/internal/middleware"
	"github.com/coastaloak/livedeck/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, middleware.AppVersion, resp.Header.Get("X-Deck-Version"))

	var body struct {
		OK      bool   `json:"ok"`
		Version string `json:"version"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, middleware.AppVersion, body.Version)
}

func TestRates(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/rates")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		FFR      float64           `json:"ffr"`
		T10      float64           `json:"t10"`
		AsOf     string            `json:"asOf"`
		Sources  map[string]string `json:"sources"`
		Audience string            `json:"audience"`
	}
	decodeJSON(t, resp, &body)

	// No API key and no reachable feed: pinned figures
	assert.Equal(t, 5.33, body.FFR)
	assert.Equal(t, 4.49, body.T10)
	assert.NotEmpty(t, body.AsOf)
	assert.Equal(t, "mock", body.Sources["F1"])
	assert.Equal(t, "LP", body.Audience)

	// Unknown audience values fall back to LP; known tiers echo through
	resp, err = http.Get(srv.URL + "/rates?audience=GP")
	require.NoError(t, err)
	decodeJSON(t, resp, &body)
	assert.Equal(t, "GP", body.Audience)

	resp, err = http.Get(srv.URL + "/rates?audience=admin")
	require.NoError(t, err)
	decodeJSON(t, resp, &body)
	assert.Equal(t, "LP", body.Audience)
}

func TestMaturities(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/maturities")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Rows   []model.MaturityRow `json:"rows"`
		Source string              `json:"source"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Rows, 3)
	assert.Equal(t, 2025, body.Rows[0].Year)
	assert.Equal(t, "mock", body.Source)
}

func TestFootnotes(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/footnotes")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fns []model.Footnote
	decodeJSON(t, resp, &fns)
	require.Len(t, fns, 4, "seeded lineage registry")
}

func TestBanks(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/banks?btype=regional")
	require.NoError(t, err)

	var body struct {
		Rows []model.Bank `json:"rows"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Rows, 2)
	assert.Nil(t, body.Rows[0].Exposure)

	detail, err := http.Get(srv.URL + "/banks/bk1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, detail.StatusCode)

	var bank struct {
		ID       string             `json:"id"`
		Exposure map[string]float64 `json:"exposure"`
	}
	decodeJSON(t, detail, &bank)
	assert.Equal(t, "bk1", bank.ID)
	assert.NotEmpty(t, bank.Exposure)

	missing, err := http.Get(srv.URL + "/banks/bk999")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	missing.Body.Close()
}

func TestWaterfallCalc(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/waterfall/calc", map[string]any{
		"cashflows": []float64{-100, 115},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Outputs struct {
			ComputedIRR float64 `json:"computedIRR"`
			LPNetIRR    float64 `json:"lpNetIRR"`
		} `json:"outputs"`
		Note string `json:"note"`
	}
	decodeJSON(t, resp, &body)
	assert.InDelta(t, 0.15, body.Outputs.ComputedIRR, 1e-4)
	assert.InDelta(t, 0.102, body.Outputs.LPNetIRR, 1e-4)
	assert.NotEmpty(t, body.Note)

	bad := postJSON(t, srv.URL+"/waterfall/calc", nil)
	assert.Equal(t, http.StatusOK, bad.StatusCode, "empty body defaults the terms")
	bad.Body.Close()
}

func TestAgents(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/agents")
	require.NoError(t, err)

	var listing struct {
		Agents []agent.Info `json:"agents"`
	}
	decodeJSON(t, resp, &listing)
	require.Len(t, listing.Agents, 4)

	exec := postJSON(t, srv.URL+"/agents/execute", agent.Request{
		Objective: "credit diligence",
		Tags:      []string{"debt", "legal"},
	})
	assert.Equal(t, http.StatusOK, exec.StatusCode)

	var response agent.Response
	decodeJSON(t, exec, &response)
	require.Len(t, response.Packets, 2)
	assert.Equal(t, "Completed 2 packets for 'credit diligence'.", response.Summary)
	assert.Len(t, response.FootnoteRegister, 4)
}

func TestAuditOpenInDevelopment(t *testing.T) {
	srv, a := newTestServer(t, "")
	requestToken(t, srv, "lp@example.com")
	a.AuditService.Flush()

	resp, err := http.Get(srv.URL + "/audit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Rows []model.AuditRecord `json:"rows"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, model.AuditTokenIssued, body.Rows[0].Action)
}

func TestAuditRequiresBearerToken(t *testing.T) {
	srv, _ := newTestServer(t, "s3cret")

	resp, err := http.Get(srv.URL + "/audit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/audit", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signed)

	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, authed.StatusCode)
	authed.Body.Close()
}

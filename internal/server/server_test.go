package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auto-trader/internal/state"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("BTCUSDT", true, state.NewSession()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStateReturnsSnapshot(t *testing.T) {
	s := state.NewSession()
	s.MarkTick()
	s.RecordTrade("BTCUSDT", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), &types.PositionSummary{Symbol: "BTCUSDT", Size: decimal.RequireFromString("0.5")})

	rec := httptest.NewRecorder()
	NewRouter("BTCUSDT", true, s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BTCUSDT", body["symbol"])
	assert.Equal(t, true, body["dry_run"])
	assert.EqualValues(t, 1, body["tick_count"])
	assert.EqualValues(t, 1, body["trades_today"])
	assert.Equal(t, "2024-03-01T00:00:00Z", body["last_trade_at"])
	positions := body["positions"].(map[string]any)
	assert.Contains(t, positions, "BTCUSDT")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("BTCUSDT", true, state.NewSession()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "autotrader_trades_today"))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("BTCUSDT", true, state.NewSession()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type panicSource struct{}

func (panicSource) Snapshot() state.Snapshot { panic("boom") }

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("BTCUSDT", true, panicSource{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New("127.0.0.1:0", http.NotFoundHandler()).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

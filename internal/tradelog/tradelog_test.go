package tradelog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)

func executedTick(at time.Time, tick int64, side types.OrderSide) *types.TickResult {
	return &types.TickResult{
		Symbol: "BTCUSDT",
		Tick:   tick,
		Signal: types.SignalDecision{Signal: types.SignalLong, Reason: "fast EMA crossed above slow EMA (9>21)", Timestamp: at},
		Risk:   types.Allow("Risk checks passed"),
		Execution: types.Executed(types.OrderResult{
			Status:        "MOCK_FILLED",
			Symbol:        "BTCUSDT",
			OrderID:       "dryrun-1",
			ClientOrderID: "DRY_RUN",
			Side:          side,
			Quantity:      decimal.RequireFromString("0.0005"),
			RefPrice:      decimal.NewFromInt(100000),
		}),
		At: at,
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestRecordTickWritesTickAndOrderLines(t *testing.T) {
	dir := t.TempDir()
	j, err := New(dir)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordTick(context.Background(), executedTick(t0, 1, types.SideBuy)))

	lines := readLines(t, filepath.Join(dir, "2024-03-01.jsonl"))
	require.Len(t, lines, 2)
	assert.Equal(t, EventTick, lines[0]["event"])
	assert.Equal(t, "LONG", lines[0]["signal"])
	assert.Equal(t, true, lines[0]["allow"])
	assert.EqualValues(t, 1, lines[0]["orders"])

	assert.Equal(t, EventOrder, lines[1]["event"])
	assert.Equal(t, "BUY", lines[1]["side"])
	assert.Equal(t, "0.0005", lines[1]["qty"])
	assert.Equal(t, "100000", lines[1]["price"])
	assert.Equal(t, "2024-03-01T23:59:00Z", lines[1]["at"])
}

func TestRecordTickSkippedHasNoOrderLine(t *testing.T) {
	dir := t.TempDir()
	j, err := New(dir)
	require.NoError(t, err)
	defer j.Close()

	tick := &types.TickResult{
		Symbol:    "BTCUSDT",
		Tick:      2,
		Signal:    types.SignalDecision{Signal: types.SignalHold, Reason: "no EMA crossover on latest candle close"},
		Risk:      types.Deny(types.SeverityInfo, "HOLD signal"),
		Execution: types.Skipped("HOLD signal"),
		At:        t0,
	}
	require.NoError(t, j.RecordTick(context.Background(), tick))
	require.NoError(t, j.RecordTick(context.Background(), nil))

	lines := readLines(t, DayPath(dir, t0))
	require.Len(t, lines, 1)
	assert.Equal(t, "HOLD signal", lines[0]["skip_reason"])
	assert.Equal(t, "INFO", lines[0]["severity"])
}

func TestRecordTickRotatesOnUTCDay(t *testing.T) {
	dir := t.TempDir()
	j, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, j.RecordTick(context.Background(), executedTick(t0, 1, types.SideBuy)))
	require.NoError(t, j.RecordTick(context.Background(), executedTick(t0.Add(2*time.Minute), 2, types.SideSell)))
	require.NoError(t, j.Close())

	first, err := ReadOrders(dir, t0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "BUY", first[0].Side)

	second, err := ReadOrders(dir, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "SELL", second[0].Side)
	assert.Equal(t, "0.0005", second[0].Qty.String())
	assert.True(t, second[0].At.Equal(t0.Add(2*time.Minute)))
}

func TestReadOrdersMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	orders, err := ReadOrders(dir, t0)
	require.NoError(t, err)
	assert.Empty(t, orders)

	content := `{"event":"order","symbol":"BTCUSDT","side":"BUY","qty":"1","price":"10"}
not json
{"event":"order", broken
{"event":"tick","symbol":"BTCUSDT"}
`
	require.NoError(t, os.WriteFile(DayPath(dir, t0), []byte(content), 0o644))

	orders, err = ReadOrders(dir, t0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "10", orders[0].Price.String())
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "2024-01-01.jsonl")
	fresh := filepath.Join(dir, "2024-03-01.jsonl")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte(`{"event":"tick"}`+"\n"), 0o644))
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, now.AddDate(0, 0, -10), now.AddDate(0, 0, -10)))
	require.NoError(t, os.Chtimes(fresh, now, now))
	require.NoError(t, os.Chtimes(other, now.AddDate(0, 0, -10), now.AddDate(0, 0, -10)))

	n, err := CompressOlder(dir, 7, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, old+".gz")
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)

	n, err = CompressOlder(dir, 0, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

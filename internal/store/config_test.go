package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default()

	assert.True(t, c.DryRun)
	assert.Equal(t, DefaultBaseURL, c.Binance.BaseURL)
	assert.Equal(t, 5000, c.Binance.RecvWindow)
	assert.Equal(t, "BTCUSDT", c.Symbol)
	assert.Equal(t, "15m", c.Timeframe)
	assert.Equal(t, 100, c.CandleLimit)
	assert.Equal(t, 9, c.Strategy.FastPeriod)
	assert.Equal(t, 21, c.Strategy.SlowPeriod)
	assert.Equal(t, 20, c.Risk.MaxTradesPerDay)
	assert.Equal(t, "5", c.Risk.DailyProfitStopPct.String())
	assert.Equal(t, "-3", c.Risk.DailyLossStopPct.String())
	assert.Equal(t, "50", c.OrderNotionalUSDT.String())
	assert.Equal(t, 60, c.PollSeconds)
	assert.Equal(t, "10s", c.RequestTimeout().String())
	assert.False(t, c.TelegramEnabled())
	require.NoError(t, c.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	c := Default()
	err := c.applyEnv(mapLookup(map[string]string{
		"DRY_RUN":               "no",
		"BINANCE_API_KEY":       "k",
		"BINANCE_SECRET_KEY":    "s",
		"SYMBOL":                " ethusdt ",
		"CANDLE_LIMIT":          "60",
		"DAILY_LOSS_STOP_PCT":   "-1.5",
		"ORDER_NOTIONAL_USDT":   "25.5",
		"NOTIFY_ON_START":       "YES",
		"TELEGRAM_TOKEN":        "tok",
		"TELEGRAM_CHAT_ID":      "42",
		"LOG_LEVEL":             "debug",
		"DAILY_PROFIT_STOP_PCT": "4",
	}))
	require.NoError(t, err)

	assert.False(t, c.DryRun)
	assert.Equal(t, "ETHUSDT", c.Symbol)
	assert.Equal(t, 60, c.CandleLimit)
	assert.Equal(t, "-1.5", c.Risk.DailyLossStopPct.String())
	assert.Equal(t, "25.5", c.OrderNotionalUSDT.String())
	assert.True(t, c.Telegram.NotifyOnStart)
	assert.True(t, c.TelegramEnabled())
	assert.Equal(t, "DEBUG", c.LogLevel)
	assert.Equal(t, "ETHUSDT", c.RouteParams().Symbol)
	assert.Equal(t, "4", c.RiskLimits().DailyProfitStopPct.String())
	require.NoError(t, c.Validate())
}

func TestBoolParsing(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "true": true, "On": true, "yes": true, "0": false, "off": false, "maybe": false} {
		c := &Config{DryRun: !want}
		require.NoError(t, c.applyEnv(mapLookup(map[string]string{"DRY_RUN": raw})))
		assert.Equal(t, want, c.DryRun, raw)
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	c := &Config{}
	err := c.applyEnv(mapLookup(map[string]string{"CANDLE_LIMIT": "lots"}))

	var se *SettingsError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "CANDLE_LIMIT", se.Field)

	err = (&Config{}).applyEnv(mapLookup(map[string]string{"ORDER_NOTIONAL_USDT": "fifty"}))
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ORDER_NOTIONAL_USDT", se.Field)
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DRY_RUN", "BINANCE_RECV_WINDOW", "BINANCE_BASE_URL", "SYMBOL", "TIMEFRAME", "CANDLE_LIMIT",
		"STRATEGY_FAST", "STRATEGY_SLOW", "MAX_TRADES_PER_DAY", "DAILY_PROFIT_STOP_PCT",
		"DAILY_LOSS_STOP_PCT", "ORDER_NOTIONAL_USDT", "POLL_SECONDS",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfigRejectsExplicitZeros(t *testing.T) {
	cases := map[string]string{
		"BINANCE_RECV_WINDOW": "binance.recv_window",
		"STRATEGY_FAST":       "strategy",
		"MAX_TRADES_PER_DAY":  "risk.max_trades_per_day",
		"ORDER_NOTIONAL_USDT": "order_notional_usdt",
		"POLL_SECONDS":        "poll_seconds",
		"CANDLE_LIMIT":        "candle_limit",
	}
	for env, field := range cases {
		t.Run(env, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(env, "0")

			c, err := LoadConfig("")
			require.Error(t, err)
			assert.Nil(t, c)

			var se *SettingsError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, field, se.Field)
		})
	}
}

func TestLoadConfigKeepsZeroLossStop(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DAILY_LOSS_STOP_PCT", "0")

	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, c.Risk.DailyLossStopPct.IsZero())
	assert.Equal(t, "5", c.Risk.DailyProfitStopPct.String())
}

func TestLoadConfigRejectsZeroFromYAML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("binance:\n  recv_window: 0\n"), 0o644))

	_, err := LoadConfig(path)
	var se *SettingsError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "binance.recv_window", se.Field)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"fast not below slow", func(c *Config) { c.Strategy.FastPeriod = 21 }, "strategy"},
		{"negative period", func(c *Config) { c.Strategy.FastPeriod = -1 }, "strategy"},
		{"recv window", func(c *Config) { c.Binance.RecvWindow = -5 }, "binance.recv_window"},
		{"zero recv window", func(c *Config) { c.Binance.RecvWindow = 0 }, "binance.recv_window"},
		{"zero timeout", func(c *Config) { c.Binance.TimeoutSeconds = 0 }, "binance.timeout_seconds"},
		{"max trades", func(c *Config) { c.Risk.MaxTradesPerDay = -1 }, "risk.max_trades_per_day"},
		{"zero max trades", func(c *Config) { c.Risk.MaxTradesPerDay = 0 }, "risk.max_trades_per_day"},
		{"zero fast period", func(c *Config) { c.Strategy.FastPeriod = 0 }, "strategy"},
		{"stops inverted", func(c *Config) { c.Risk.DailyLossStopPct = c.Risk.DailyProfitStopPct }, "risk"},
		{"notional", func(c *Config) { c.OrderNotionalUSDT = c.OrderNotionalUSDT.Neg() }, "order_notional_usdt"},
		{"candle limit", func(c *Config) { c.CandleLimit = 25 }, "candle_limit"},
		{"live without key", func(c *Config) { c.DryRun = false }, "BINANCE_API_KEY"},
		{"live without secret", func(c *Config) { c.DryRun = false; c.Binance.APIKey = "k" }, "BINANCE_SECRET_KEY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.edit(c)
			err := c.Validate()

			var se *SettingsError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tc.field, se.Field)
		})
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TIMEFRAME", "1h")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbol: solusdt
timeframe: 5m
strategy:
  fast: 5
  slow: 12
risk:
  daily_profit_stop_pct: 2.5
order_notional_usdt: "15"
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", c.Symbol)
	assert.Equal(t, "1h", c.Timeframe)
	assert.Equal(t, 5, c.Strategy.FastPeriod)
	assert.Equal(t, 12, c.Strategy.SlowPeriod)
	assert.Equal(t, "2.5", c.Risk.DailyProfitStopPct.String())
	assert.Equal(t, "15", c.OrderNotionalUSDT.String())
	assert.True(t, c.DryRun)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DRY_RUN", "true")
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, c.DryRun)
	assert.Equal(t, 9, c.Strategy.FastPeriod)
}

func TestSettingsErrorMessage(t *testing.T) {
	err := settingsErr("symbol", "cannot be empty")
	assert.Equal(t, "settings: symbol: cannot be empty", err.Error())
}

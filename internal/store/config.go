package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://testnet.binancefuture.com"
	DefaultRecvWindow     = 5000
	DefaultSymbol         = "BTCUSDT"
	DefaultTimeframe      = "15m"
	DefaultCandleLimit    = 100
	DefaultFastPeriod     = 9
	DefaultSlowPeriod     = 21
	DefaultMaxTrades      = 20
	DefaultPollSeconds    = 60
	DefaultTimeoutSeconds = 10
	DefaultJournalDir     = "logs"
	DefaultLogLevel       = "INFO"
)

// SettingsError is returned for any invalid or unparsable setting.
type SettingsError struct {
	Field   string
	Message string
}

func (e *SettingsError) Error() string {
	if e.Field == "" {
		return "settings: " + e.Message
	}
	return fmt.Sprintf("settings: %s: %s", e.Field, e.Message)
}

func settingsErr(field, format string, args ...any) *SettingsError {
	return &SettingsError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type Config struct {
	DryRun bool `yaml:"dry_run"`

	Binance struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"-"`
		SecretKey      string `yaml:"-"`
		RecvWindow     int    `yaml:"recv_window"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		// RequestsPerSecond paces REST calls; 0 disables pacing.
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"binance"`

	Symbol      string `yaml:"symbol"`
	Timeframe   string `yaml:"timeframe"`
	CandleLimit int    `yaml:"candle_limit"`
	PollSeconds int    `yaml:"poll_seconds"`

	Strategy struct {
		FastPeriod int `yaml:"fast"`
		SlowPeriod int `yaml:"slow"`
	} `yaml:"strategy"`

	Risk struct {
		MaxTradesPerDay    int             `yaml:"max_trades_per_day"`
		DailyProfitStopPct decimal.Decimal `yaml:"daily_profit_stop_pct"`
		DailyLossStopPct   decimal.Decimal `yaml:"daily_loss_stop_pct"`
	} `yaml:"risk"`

	OrderNotionalUSDT decimal.Decimal `yaml:"order_notional_usdt"`

	Telegram struct {
		Token         string `yaml:"-"`
		ChatID        string `yaml:"chat_id"`
		NotifyOnStart bool   `yaml:"notify_on_start"`
	} `yaml:"telegram"`

	LogLevel   string `yaml:"log_level"`
	StatusAddr string `yaml:"status_addr"`
	JournalDir string `yaml:"journal_dir"`
	// JournalRetentionDays gzips journal files older than this; 0 keeps all.
	JournalRetentionDays int `yaml:"journal_retention_days"`
}

// Default returns a config with every default applied. It is also the
// base LoadConfig overlays.
func Default() *Config {
	c := &Config{
		DryRun:            true,
		Symbol:            DefaultSymbol,
		Timeframe:         DefaultTimeframe,
		CandleLimit:       DefaultCandleLimit,
		PollSeconds:       DefaultPollSeconds,
		OrderNotionalUSDT: decimal.NewFromInt(50),
		LogLevel:          DefaultLogLevel,
		JournalDir:        DefaultJournalDir,
	}
	c.Binance.BaseURL = DefaultBaseURL
	c.Binance.RecvWindow = DefaultRecvWindow
	c.Binance.TimeoutSeconds = DefaultTimeoutSeconds
	c.Strategy.FastPeriod = DefaultFastPeriod
	c.Strategy.SlowPeriod = DefaultSlowPeriod
	c.Risk.MaxTradesPerDay = DefaultMaxTrades
	c.Risk.DailyProfitStopPct = decimal.NewFromInt(5)
	c.Risk.DailyLossStopPct = decimal.NewFromInt(-3)
	return c
}

func (c *Config) Validate() error {
	if c.Strategy.FastPeriod <= 0 || c.Strategy.SlowPeriod <= 0 {
		return settingsErr("strategy", "periods must be positive, got fast=%d slow=%d", c.Strategy.FastPeriod, c.Strategy.SlowPeriod)
	}
	if c.Strategy.FastPeriod >= c.Strategy.SlowPeriod {
		return settingsErr("strategy", "fast period %d must be less than slow period %d", c.Strategy.FastPeriod, c.Strategy.SlowPeriod)
	}
	if c.Binance.RecvWindow <= 0 {
		return settingsErr("binance.recv_window", "must be positive, got %d", c.Binance.RecvWindow)
	}
	if c.Binance.TimeoutSeconds <= 0 {
		return settingsErr("binance.timeout_seconds", "must be positive, got %d", c.Binance.TimeoutSeconds)
	}
	if c.Risk.MaxTradesPerDay <= 0 {
		return settingsErr("risk.max_trades_per_day", "must be positive, got %d", c.Risk.MaxTradesPerDay)
	}
	if !c.Risk.DailyLossStopPct.LessThan(c.Risk.DailyProfitStopPct) {
		return settingsErr("risk", "loss stop %s%% must be below profit stop %s%%", c.Risk.DailyLossStopPct, c.Risk.DailyProfitStopPct)
	}
	if c.OrderNotionalUSDT.Sign() <= 0 {
		return settingsErr("order_notional_usdt", "must be positive, got %s", c.OrderNotionalUSDT)
	}
	if need := c.Strategy.SlowPeriod + 5; c.CandleLimit < need {
		return settingsErr("candle_limit", "must be at least %d for slow period %d, got %d", need, c.Strategy.SlowPeriod, c.CandleLimit)
	}
	if c.PollSeconds <= 0 {
		return settingsErr("poll_seconds", "must be positive, got %d", c.PollSeconds)
	}
	if strings.TrimSpace(c.Symbol) == "" {
		return settingsErr("symbol", "cannot be empty")
	}
	if !c.DryRun {
		if strings.TrimSpace(c.Binance.APIKey) == "" {
			return settingsErr("BINANCE_API_KEY", "Missing required environment variable: BINANCE_API_KEY. Set it in your shell or .env file.")
		}
		if strings.TrimSpace(c.Binance.SecretKey) == "" {
			return settingsErr("BINANCE_SECRET_KEY", "Missing required environment variable: BINANCE_SECRET_KEY. Set it in your shell or .env file.")
		}
	}
	return nil
}

func (c *Config) RiskLimits() types.RiskLimits {
	return types.RiskLimits{
		MaxTradesPerDay:    c.Risk.MaxTradesPerDay,
		DailyProfitStopPct: c.Risk.DailyProfitStopPct,
		DailyLossStopPct:   c.Risk.DailyLossStopPct,
	}
}

func (c *Config) RouteParams() types.RouteParams {
	return types.RouteParams{Symbol: c.Symbol, NotionalUSDT: c.OrderNotionalUSDT}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Binance.TimeoutSeconds) * time.Second
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// LoadConfig starts from Default, overlays path (if non-empty and present)
// and the environment, then validates. Values set explicitly, zero
// included, are never replaced by defaults.
func LoadConfig(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.boolVar("DRY_RUN", &c.DryRun)
	env.stringVar("BINANCE_API_KEY", &c.Binance.APIKey)
	env.stringVar("BINANCE_SECRET_KEY", &c.Binance.SecretKey)
	env.stringVar("BINANCE_BASE_URL", &c.Binance.BaseURL)
	env.intVar("BINANCE_RECV_WINDOW", &c.Binance.RecvWindow)
	env.stringVar("SYMBOL", &c.Symbol)
	env.stringVar("TIMEFRAME", &c.Timeframe)
	env.intVar("CANDLE_LIMIT", &c.CandleLimit)
	env.intVar("STRATEGY_FAST", &c.Strategy.FastPeriod)
	env.intVar("STRATEGY_SLOW", &c.Strategy.SlowPeriod)
	env.intVar("MAX_TRADES_PER_DAY", &c.Risk.MaxTradesPerDay)
	env.decimalVar("DAILY_PROFIT_STOP_PCT", &c.Risk.DailyProfitStopPct)
	env.decimalVar("DAILY_LOSS_STOP_PCT", &c.Risk.DailyLossStopPct)
	env.decimalVar("ORDER_NOTIONAL_USDT", &c.OrderNotionalUSDT)
	env.stringVar("TELEGRAM_TOKEN", &c.Telegram.Token)
	env.stringVar("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	env.boolVar("NOTIFY_ON_START", &c.Telegram.NotifyOnStart)
	env.stringVar("LOG_LEVEL", &c.LogLevel)
	env.intVar("POLL_SECONDS", &c.PollSeconds)
	env.stringVar("STATUS_ADDR", &c.StatusAddr)
	env.stringVar("JOURNAL_DIR", &c.JournalDir)
	env.intVar("TRADER_LOG_RETENTION_DAYS", &c.JournalRetentionDays)

	c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	c.LogLevel = strings.ToUpper(c.LogLevel)
	return env.err
}

// envReader keeps the first parse failure so callers check once.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (r *envReader) get(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) stringVar(name string, dst *string) {
	if v, ok := r.get(name); ok && v != "" {
		*dst = v
	}
}

// boolVar treats 1, true, yes and on as true and anything else as false.
func (r *envReader) boolVar(name string, dst *bool) {
	v, ok := r.get(name)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	default:
		*dst = false
	}
}

func (r *envReader) intVar(name string, dst *int) {
	v, ok := r.get(name)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = settingsErr(name, "not an integer: %q", v)
		return
	}
	*dst = n
}

func (r *envReader) decimalVar(name string, dst *decimal.Decimal) {
	v, ok := r.get(name)
	if !ok || v == "" {
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.err = settingsErr(name, "not a decimal: %q", v)
		return
	}
	*dst = d
}

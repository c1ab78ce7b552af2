package binance

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"auto-trader/internal/api"
	"auto-trader/internal/exchange"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/types"

	"github.com/google/uuid"
)

const (
	Name = "binance"

	DefaultBaseURL    = "https://testnet.binancefuture.com"
	DefaultRecvWindow = 5000
	DefaultTimeout    = 10 * time.Second

	apiKeyHeader = "X-MBX-APIKEY"

	MockFilledStatus  = "MOCK_FILLED"
	DryRunClientID    = "DRY_RUN"
	dryRunOrderPrefix = "dryrun-"
)

// Params configure a futures testnet client.
type Params struct {
	BaseURL    string
	APIKey     string
	SecretKey  string
	RecvWindow int
	DryRun     bool
	Timeout    time.Duration
	// Retry defaults to api.DefaultRetryPolicy.
	Retry *api.RetryPolicy
	// RequestsPerSecond paces outgoing calls; 0 disables pacing.
	RequestsPerSecond float64
	Now               func() time.Time
}

type Client struct {
	http       *api.Client
	apiKey     string
	secretKey  string
	recvWindow int
	dryRun     bool
	retry      api.RetryPolicy
	now        func() time.Time
	// offsetMs is server time minus local time, learned by SyncTime.
	offsetMs atomic.Int64
}

var _ interfaces.ExchangeClient = (*Client)(nil)

func New(p Params) *Client {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.RecvWindow <= 0 {
		p.RecvWindow = DefaultRecvWindow
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	retry := api.DefaultRetryPolicy()
	if p.Retry != nil {
		retry = *p.Retry
	}

	return &Client{
		http: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.BaseURL, "/")),
			api.WithTimeout(p.Timeout),
			api.WithHeader("Content-Type", "application/json"),
			api.WithRateLimit(p.RequestsPerSecond, 1),
			api.WithLogging(true),
		),
		apiKey:     p.APIKey,
		secretKey:  p.SecretKey,
		recvWindow: p.RecvWindow,
		dryRun:     p.DryRun,
		retry:      retry,
		now:        p.Now,
	}
}

func (c *Client) GetMarkPrice(ctx context.Context, symbol string) (types.PriceQuote, error) {
	body, err := c.request(ctx, "/fapi/v1/premiumIndex", map[string]any{"symbol": symbol}, false)
	if err != nil {
		return types.PriceQuote{}, err
	}
	return parseMarkPrice(body, c.now)
}

func (c *Client) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	body, err := c.request(ctx, "/fapi/v1/klines", map[string]any{
		"symbol":   symbol,
		"interval": timeframe,
		"limit":    limit,
	}, false)
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

func (c *Client) GetBalances(ctx context.Context) ([]types.Balance, error) {
	if ok, err := c.canSign(ctx); !ok {
		if err != nil {
			return nil, err
		}
		return []types.Balance{}, nil
	}
	body, err := c.request(ctx, "/fapi/v2/balance", map[string]any{}, true)
	if err != nil {
		return nil, err
	}
	return parseBalances(body)
}

func (c *Client) GetPositions(ctx context.Context, symbol string) ([]types.PositionSummary, error) {
	if ok, err := c.canSign(ctx); !ok {
		if err != nil {
			return nil, err
		}
		return []types.PositionSummary{}, nil
	}
	params := map[string]any{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	body, err := c.request(ctx, "/fapi/v2/positionRisk", params, true)
	if err != nil {
		return nil, err
	}
	return parsePositions(body, c.now())
}

// PlaceOrder never reaches the network in dry-run. Live placement is not
// implemented and fails loudly.
func (c *Client) PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	if !c.dryRun {
		return types.OrderResult{}, &exchange.ExchangeError{
			Exchange: Name,
			Kind:     exchange.ErrNotImplemented,
			Message:  "real order placement is disabled",
		}
	}

	logger.Info(ctx, "dry-run mock order",
		"symbol", req.Symbol,
		"side", req.Side.String(),
		"order_type", string(req.Type),
		"quantity", req.Quantity.String(),
	)

	return types.OrderResult{
		Status:        MockFilledStatus,
		Symbol:        req.Symbol,
		OrderID:       fmt.Sprintf("%s%d-%s", dryRunOrderPrefix, c.now().UnixMilli(), uuid.NewString()[:8]),
		ClientOrderID: DryRunClientID,
		Side:          req.Side,
		Quantity:      req.Quantity,
	}, nil
}

// SyncTime learns the server clock offset used for signed timestamps.
func (c *Client) SyncTime(ctx context.Context) (time.Duration, error) {
	sent := c.now()
	body, err := c.request(ctx, "/fapi/v1/time", nil, false)
	if err != nil {
		return 0, err
	}
	serverMs, err := parseServerTime(body)
	if err != nil {
		return 0, err
	}
	received := c.now()
	midpoint := sent.Add(received.Sub(sent) / 2).UnixMilli()
	offset := serverMs - midpoint
	c.offsetMs.Store(offset)
	return time.Duration(offset) * time.Millisecond, nil
}

func (c *Client) timestamp() int64 {
	return c.now().UnixMilli() + c.offsetMs.Load()
}

// canSign reports whether signed endpoints may be called. Missing
// credentials are tolerated in dry-run and fatal in live mode.
func (c *Client) canSign(ctx context.Context) (bool, error) {
	if c.apiKey != "" && c.secretKey != "" {
		return true, nil
	}
	if c.dryRun {
		logger.Warn(ctx, "Missing Binance API credentials in dry-run mode; signed endpoints return empty results")
		return false, nil
	}
	return false, exchange.NewAuthError(Name, "BINANCE_API_KEY and BINANCE_SECRET_KEY are required for signed endpoints when not in dry-run")
}

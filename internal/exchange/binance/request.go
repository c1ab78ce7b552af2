package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auto-trader/internal/api"
	"auto-trader/internal/exchange"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
)

// request performs a GET and classifies failures. Signed requests carry
// timestamp, recvWindow and a trailing signature.
func (c *Client) request(ctx context.Context, path string, params map[string]any, signed bool) ([]byte, error) {
	query := make(map[string]any, len(params)+2)
	for k, v := range params {
		query[k] = v
	}

	var headers map[string]string
	var encoded string
	if signed {
		if c.secretKey == "" {
			return nil, exchange.NewAuthError(Name, "BINANCE_SECRET_KEY is required for signed requests")
		}
		query["timestamp"] = c.timestamp()
		query["recvWindow"] = c.recvWindow
		encoded = signedQuery(c.secretKey, query)
		headers = map[string]string{apiKeyHeader: c.apiKey}
	} else {
		encoded = EncodeParams(query)
	}

	url := path
	if encoded != "" {
		url += "?" + encoded
	}

	logger.Debug(ctx, "exchange request", "method", http.MethodGet, "path", path, "signed", signed)

	resp, attempts, err := c.http.DoWithRetry(ctx, func() *api.Request {
		req := api.NewRequest(http.MethodGet, url)
		for k, v := range headers {
			req.WithHeader(k, v)
		}
		return req
	}, c.retry)
	if attempts > 1 {
		metrics.ExchangeRetriesTotal.WithLabelValues(path).Add(float64(attempts - 1))
	}
	if err != nil {
		return nil, classify(err)
	}
	return resp.Body, nil
}

func classify(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized:
			return &exchange.ExchangeError{Exchange: Name, Kind: exchange.ErrAuth, Status: se.StatusCode,
				Message: "authentication failed", Original: err}
		case se.StatusCode == http.StatusTooManyRequests:
			return &exchange.ExchangeError{Exchange: Name, Kind: exchange.ErrRateLimit, Status: se.StatusCode,
				Message: "rate limit exceeded", Original: err}
		default:
			return &exchange.ExchangeError{Exchange: Name, Status: se.StatusCode,
				Message:  fmt.Sprintf("request failed with status %d: %s", se.StatusCode, api.Truncate(string(se.Body), 200)),
				Original: err}
		}
	}

	var te *api.TransportError
	if errors.As(err, &te) {
		return &exchange.ExchangeError{Exchange: Name, Message: fmt.Sprintf("network error: %v", te.Err), Original: err}
	}
	return &exchange.ExchangeError{Exchange: Name, Message: err.Error(), Original: err}
}

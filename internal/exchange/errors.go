package exchange

import (
	"errors"
	"fmt"
)

// ErrExchange matches every *ExchangeError via errors.Is.
var ErrExchange = errors.New("exchange error")

var (
	ErrAuth           = errors.New("authentication failed")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrNotImplemented = errors.New("not implemented")
)

// ExchangeError is a classified exchange failure. Kind is one of the
// sentinels above, or nil for a generic failure.
type ExchangeError struct {
	Exchange string
	Kind     error
	Status   int
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	if e.Exchange == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Exchange, e.Message)
}

func (e *ExchangeError) Is(target error) bool {
	if target == ErrExchange {
		return true
	}
	return e.Kind != nil && target == e.Kind
}

func (e *ExchangeError) Unwrap() error {
	return e.Original
}

func NewAuthError(exchange, message string) *ExchangeError {
	return &ExchangeError{Exchange: exchange, Kind: ErrAuth, Status: 401, Message: message}
}

func NewRateLimitError(exchange, message string) *ExchangeError {
	return &ExchangeError{Exchange: exchange, Kind: ErrRateLimit, Status: 429, Message: message}
}

// Kind names the failure class for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrNotImplemented):
		return "not_implemented"
	case errors.Is(err, ErrExchange):
		return "exchange"
	default:
		return "other"
	}
}

package engine

import (
	"auto-trader/internal/interfaces"
	"auto-trader/internal/store"
)

// New builds the tick pipeline for cfg.Symbol. journal may be nil.
func New(
	cfg *store.Config,
	exchange interfaces.ExchangeClient,
	strategy interfaces.Strategy,
	risk interfaces.RiskEvaluator,
	router interfaces.OrderRouter,
	session interfaces.Session,
	journal interfaces.Journal,
	opts ...Option,
) interfaces.Engine {
	return newEngine(cfg, exchange, strategy, risk, router, session, journal, opts...)
}

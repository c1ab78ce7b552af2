package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autotrader"

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ticks_total", Help: "Pipeline ticks by outcome"},
		[]string{"symbol", "outcome"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "signals_total", Help: "Strategy signals generated"},
		[]string{"symbol", "signal"},
	)
	RiskDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "risk_decisions_total", Help: "Risk evaluations by severity"},
		[]string{"allow", "severity"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side", "status"},
	)
	ExchangeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "exchange_requests_total", Help: "Exchange calls by result kind"},
		[]string{"op", "kind"},
	)
	ExchangeRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "exchange_retries_total", Help: "Retried exchange HTTP attempts"},
		[]string{"path"},
	)
	ExchangeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "exchange_request_seconds", Help: "Exchange call latency", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)
	TradesToday = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "trades_today", Help: "Orders placed in the current session day"},
	)
	DayPnLPct = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "day_pnl_pct", Help: "Session day P&L percent"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		SignalsTotal,
		RiskDecisionsTotal,
		OrdersTotal,
		ExchangeRequestsTotal,
		ExchangeRetriesTotal,
		ExchangeLatency,
		TradesToday,
		DayPnLPct,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

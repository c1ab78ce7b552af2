package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorsRegistered(t *testing.T) {
	TicksTotal.WithLabelValues("BTCUSDT", "ok").Inc()
	ExchangeRetriesTotal.WithLabelValues("/fapi/v1/klines").Add(2)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	want := map[string]bool{
		"autotrader_ticks_total":            false,
		"autotrader_exchange_retries_total": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("%s metric not found", name)
		}
	}

	var m dto.Metric
	if err := ExchangeRetriesTotal.WithLabelValues("/fapi/v1/klines").Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := m.GetCounter().GetValue(); got < 2 {
		t.Fatalf("retries = %v, want >= 2", got)
	}
}

func TestHandlerServesText(t *testing.T) {
	OrdersTotal.WithLabelValues("BTCUSDT", "BUY", "MOCK_FILLED").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "autotrader_orders_total") {
		t.Fatalf("orders metric missing from exposition")
	}
}

package metrics

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersByOutcome(t *testing.T) {
	m := New()
	m.HistoryRecorded("ok")
	m.RewardCollected("ineligible")
	m.RewardCollected("ineligible")
	m.Exchanged("sell", "ok")
	m.Exchanged("buy", "insufficient_funds")

	if got := testutil.ToFloat64(m.collects.WithLabelValues("ineligible")); got != 2 {
		t.Fatalf("expected 2 ineligible collections, got %v", got)
	}
	if got := testutil.ToFloat64(m.exchanges.WithLabelValues("buy", "insufficient_funds")); got != 1 {
		t.Fatalf("expected 1 failed buy, got %v", got)
	}
	if got := testutil.ToFloat64(m.histories.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 recorded history, got %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Exchanged("sell", "ok")

	rec := httptest.NewRecorder()
	m.Handler(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `quiz_economy_exchanges_total{op="sell",outcome="ok"} 1`) {
		t.Fatalf("expected exchange counter in output, got:\n%s", body)
	}
}

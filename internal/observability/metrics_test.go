package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveConversion(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	c.ObserveConversion("convert", time.Now(), 6, nil)
	c.ObserveConversion("convert", time.Now(), 0, errors.New("bad csv"))
	c.CacheHit()

	if got := testutil.ToFloat64(c.Conversions.WithLabelValues("convert", "ok")); got != 1 {
		t.Fatalf("ok conversions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Conversions.WithLabelValues("convert", "error")); got != 1 {
		t.Fatalf("error conversions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.CacheHits); got != 1 {
		t.Fatalf("cache hits = %v, want 1", got)
	}
	if n := histogramSampleCount(t, reg, "litchitool_conversion_duration_seconds", map[string]string{"endpoint": "convert"}); n != 2 {
		t.Fatalf("duration sample_count = %d, want 2", n)
	}
	if n := histogramSampleCount(t, reg, "litchitool_mission_waypoints", nil); n != 1 {
		t.Fatalf("waypoints sample_count = %d, want 1", n)
	}
}

func TestCollectorReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	second.CacheHit()
	if got := testutil.ToFloat64(first.CacheHits); got != 1 {
		t.Fatalf("collectors not shared: %v", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *ConversionCollector
	c.ObserveConversion("kml", time.Now(), 1, nil)
	c.CacheHit()
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}
	c.ObserveConversion("kml", time.Now(), 3, nil)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `litchitool_conversions_total{endpoint="kml",result="ok"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

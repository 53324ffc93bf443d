package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDashboardMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDashboardMetrics(reg)
	variant := "invoice"
	metrics.ObserveDuration(variant, 250*time.Millisecond)
	metrics.AddOrdersScanned(variant, 42)
	metrics.IncCacheHit(variant)
	metrics.IncCacheMiss(variant)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "dashboard_orders_scanned_total", "variant", variant); err != nil {
		t.Fatalf("fetch orders scanned: %v", err)
	} else if got != 42 {
		t.Fatalf("expected orders scanned=42, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "dashboard_cache_hits_total", "variant", variant); err != nil {
		t.Fatalf("fetch cache hits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected hits=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "dashboard_cache_misses_total", "variant", variant); err != nil {
		t.Fatalf("fetch cache misses: %v", err)
	} else if got != 1 {
		t.Fatalf("expected misses=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "dashboard_aggregation_duration_seconds", "variant", variant); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestDashboardMetricsNilSafe(t *testing.T) {
	var metrics *DashboardMetrics
	metrics.ObserveDuration("sales", time.Second)
	metrics.AddOrdersScanned("sales", 1)
	metrics.IncCacheHit("sales")
	metrics.IncCacheMiss("sales")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

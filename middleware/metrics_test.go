package middleware_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xraph/flux"
	mw "github.com/xraph/flux/middleware"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestMetrics_RecordsDuration(t *testing.T) {
	reader, mp := setupTestMeter()
	dispatch := mw.MetricsWithMeter(mp.Meter("test"))(&captureAPI{}, passThrough)

	dispatch(newSuccessAction())

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "flux.dispatch.duration")
	if metric == nil {
		t.Fatal("flux.dispatch.duration metric not found")
	}

	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("expected Histogram[float64] data type")
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points recorded for duration")
	}
	if hist.DataPoints[0].Count != 1 {
		t.Errorf("expected count=1, got %d", hist.DataPoints[0].Count)
	}
}

func TestMetrics_CountsByStatus(t *testing.T) {
	reader, mp := setupTestMeter()
	dispatch := mw.MetricsWithMeter(mp.Meter("test"))(&captureAPI{}, passThrough)

	dispatch(newSuccessAction())
	dispatch(&flux.Action{
		Type: "users/load",
		Err:  true,
		Meta: flux.Meta{Lifecycle: flux.StageFailure},
	})

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "flux.dispatch.count")
	if metric == nil {
		t.Fatal("flux.dispatch.count metric not found")
	}

	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected Sum[int64] data type")
	}

	byStatus := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		if status, found := dp.Attributes.Value(attribute.Key("status")); found {
			byStatus[status.AsString()] += dp.Value
		}
	}

	if byStatus["ok"] != 1 {
		t.Errorf("ok count = %d, want 1", byStatus["ok"])
	}
	if byStatus["error"] != 1 {
		t.Errorf("error count = %d, want 1", byStatus["error"])
	}
}

func TestMetrics_DefaultNoopSafe(t *testing.T) {
	// Calling Metrics() without a global provider should not panic.
	dispatch := mw.Metrics()(&captureAPI{}, passThrough)

	a := newSuccessAction()
	if got := dispatch(a); got != any(a) {
		t.Errorf("expected pass-through result, got %v", got)
	}
}

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/auctionhouse/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:      "auctionhouse-test",
		ServiceVersion:   "test",
		Environment:      config.EnvTesting,
		StoreBackend:     config.StoreMemory,
		TraceSampleRatio: 1,
	}
}

func TestSetup_NoOtelEndpoint(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler == nil {
		t.Fatal("expected non-nil metrics handler")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_MetricsHandlerServesPrometheusFormat(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("expected text/plain content-type, got %q", ct)
	}
}

func TestSetup_InstallsTraceContextPropagator(t *testing.T) {
	shutdown, _, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("propagator fields %v missing traceparent", fields)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		sampled bool
	}{
		{"never", 0, false},
		{"negative clamps to never", -1, false},
		{"always", 1, true},
		{"above one clamps to always", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(Sampler(tt.ratio)))
			t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

			_, span := tp.Tracer("test").Start(context.Background(), "root")
			defer span.End()
			if got := span.SpanContext().IsSampled(); got != tt.sampled {
				t.Errorf("sampled = %v, want %v", got, tt.sampled)
			}
		})
	}
}

func TestSampler_FollowsSampledParent(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(Sampler(0)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), parent)
	_, span := tp.Tracer("test").Start(ctx, "child")
	defer span.End()

	if !span.SpanContext().IsSampled() {
		t.Error("child of a sampled parent should be sampled")
	}
}

func TestSweepDurationView_UsesSubSecondBuckets(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(SweepDurationView()),
	)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	h, err := mp.Meter("test").Float64Histogram("auction_sweep_duration_seconds")
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	h.Record(context.Background(), (3 * time.Millisecond).Seconds())

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected metrics: %+v", rm.ScopeMetrics)
	}
	hist, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", rm.ScopeMetrics[0].Metrics[0].Data)
	}
	dp := hist.DataPoints[0]
	if len(dp.Bounds) != len(SweepDurationBuckets) {
		t.Fatalf("bounds = %v, want %v", dp.Bounds, SweepDurationBuckets)
	}
	// 3ms lands in the (0.001, 0.005] bucket.
	if dp.BucketCounts[1] != 1 {
		t.Errorf("bucket counts = %v", dp.BucketCounts)
	}
}

func TestSentryOptions(t *testing.T) {
	cfg := baseConfig()
	cfg.SentryDSN = "https://key@sentry.example.com/1"
	cfg.SentrySampleRate = 0.5
	cfg.BroadcastBackend = config.BroadcastRedis

	opts := sentryOptions(cfg)
	if opts.Release != "auctionhouse-test@test" {
		t.Errorf("release = %q", opts.Release)
	}
	if opts.SampleRate != 0.5 {
		t.Errorf("sample rate = %v", opts.SampleRate)
	}
	if opts.Tags["store_backend"] != config.StoreMemory || opts.Tags["broadcast_backend"] != config.BroadcastRedis {
		t.Errorf("tags = %v", opts.Tags)
	}
}

func TestSetupSentry_NoDSNIsNoop(t *testing.T) {
	if err := SetupSentry(baseConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCaptureError_WithoutClientIsNoop(t *testing.T) {
	CaptureError(nil, nil)
	CaptureError(context.Canceled, map[string]string{"topic": "auction.ended"})
}

package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	ExtractRequestsTotal    metric.Int64Counter
	AnalyzeRequestsTotal    metric.Int64Counter
	ProviderCallDuration    metric.Float64Histogram
	ProviderCallErrorsTotal metric.Int64Counter
	DBQueryDurationSeconds  metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("eternal-hope")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.ExtractRequestsTotal, err = meter.Int64Counter(
			"place_extract_requests_total",
			metric.WithDescription("Total number of place resolution requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_extract_requests_total: %v", err)
		}

		m.AnalyzeRequestsTotal, err = meter.Int64Counter(
			"place_analyze_requests_total",
			metric.WithDescription("Total number of vibe analysis requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_analyze_requests_total: %v", err)
		}

		m.ProviderCallDuration, err = meter.Float64Histogram(
			"provider_call_duration_seconds",
			metric.WithDescription("Duration of outbound provider HTTP calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_call_duration_seconds: %v", err)
		}

		m.ProviderCallErrorsTotal, err = meter.Int64Counter(
			"provider_call_errors_total",
			metric.WithDescription("Total number of failed outbound provider calls"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_call_errors_total: %v", err)
		}

		m.DBQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance, or nil if InitAppMetrics has not
// run yet.
func Get() *AppMetrics {
	return appMetrics
}

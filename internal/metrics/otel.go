package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and an
// optional OTLP exporter. It returns a Recorder, the Prometheus HTTP
// handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "odds-sync-service"
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}
	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)
	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}
	return rec, promHandler, shutdown, nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx                 context.Context
	meter               metric.Meter
	fetches             metric.Int64Counter
	fetchErrors         metric.Int64Counter
	fetchLatencyMs      metric.Float64Histogram
	logins              metric.Int64Counter
	supplements         metric.Int64Counter
	supplementErrors    metric.Int64Counter
	snapshotWrites      metric.Int64Counter
	snapshotWriteErrors metric.Int64Counter
	snapshotLatencyMs   metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("odds-sync-service")

	fetches, err := meter.Int64Counter("fetch_cycles_total")
	if err != nil {
		return nil, err
	}
	fetchErrors, err := meter.Int64Counter("fetch_errors_total")
	if err != nil {
		return nil, err
	}
	fetchLatency, err := meter.Float64Histogram("fetch_cycle_duration_ms")
	if err != nil {
		return nil, err
	}
	logins, err := meter.Int64Counter("logins_total")
	if err != nil {
		return nil, err
	}
	supplements, err := meter.Int64Counter("supplement_requests_total")
	if err != nil {
		return nil, err
	}
	supplementErrors, err := meter.Int64Counter("supplement_errors_total")
	if err != nil {
		return nil, err
	}
	snapshotWrites, err := meter.Int64Counter("snapshot_writes_total")
	if err != nil {
		return nil, err
	}
	snapshotWriteErrors, err := meter.Int64Counter("snapshot_write_errors_total")
	if err != nil {
		return nil, err
	}
	snapshotLatency, err := meter.Float64Histogram("snapshot_write_duration_ms")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:                 context.Background(),
		meter:               meter,
		fetches:             fetches,
		fetchErrors:         fetchErrors,
		fetchLatencyMs:      fetchLatency,
		logins:              logins,
		supplements:         supplements,
		supplementErrors:    supplementErrors,
		snapshotWrites:      snapshotWrites,
		snapshotWriteErrors: snapshotWriteErrors,
		snapshotLatencyMs:   snapshotLatency,
	}, nil
}

func (o *otelInstruments) recordFetch(category string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrCategory, category))
	o.fetches.Add(o.ctx, 1, attrs)
	o.fetchLatencyMs.Record(o.ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		o.fetchErrors.Add(o.ctx, 1, attrs)
	}
}

func (o *otelInstruments) recordLogin(result string) {
	if o == nil {
		return
	}
	o.logins.Add(o.ctx, 1, metric.WithAttributes(attribute.String(AttrResult, result)))
}

func (o *otelInstruments) recordSupplement(err error) {
	if o == nil {
		return
	}
	o.supplements.Add(o.ctx, 1)
	if err != nil {
		o.supplementErrors.Add(o.ctx, 1)
	}
}

func (o *otelInstruments) recordSnapshotWrite(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.snapshotWrites.Add(o.ctx, 1)
	o.snapshotLatencyMs.Record(o.ctx, float64(duration.Milliseconds()))
	if err != nil {
		o.snapshotWriteErrors.Add(o.ctx, 1)
	}
}

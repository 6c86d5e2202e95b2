package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "wusul-webhooks"

// OTelExporter publishes Collector snapshots as OpenTelemetry gauges in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	gatherer      promclient.Gatherer

	meter              metric.Meter
	queueLengthGauge   metric.Int64ObservableGauge
	stateCountGauge    metric.Int64ObservableGauge
	throughputGauge    metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
}

// NewOTelExporter creates an exporter registered on the default Prometheus registry
// and installs its meter provider globally
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	oe, err := NewOTelExporterWithRegistry(collector, promclient.DefaultRegisterer, promclient.DefaultGatherer)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(oe.meterProvider)
	return oe, nil
}

// NewOTelExporterWithRegistry creates an exporter bound to the given registry
func NewOTelExporterWithRegistry(collector Collector, registerer promclient.Registerer, gatherer promclient.Gatherer) (*OTelExporter, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		gatherer:      gatherer,
		meter: meterProvider.Meter(
			meterName,
			metric.WithInstrumentationVersion("1.0.0"),
		),
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// Meter returns the meter backing this exporter
func (oe *OTelExporter) Meter() metric.Meter {
	return oe.meter
}

func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.queueLengthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.queue.length",
		metric.WithDescription("Number of entries waiting per delivery queue"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeQueueLengths),
	)
	if err != nil {
		return fmt.Errorf("creating queue length gauge: %w", err)
	}

	oe.stateCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.delivery.state.count",
		metric.WithDescription("Number of stored delivery attempts by state"),
		metric.WithUnit("{attempts}"),
		metric.WithInt64Callback(oe.observeStateCounts),
	)
	if err != nil {
		return fmt.Errorf("creating state count gauge: %w", err)
	}

	oe.throughputGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.throughput",
		metric.WithDescription("Number of deliveries completed over time window"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeThroughput),
	)
	if err != nil {
		return fmt.Errorf("creating throughput gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.workers.active",
		metric.WithDescription("Number of live workers per status"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	return nil
}

func (oe *OTelExporter) observeQueueLengths(ctx context.Context, observer metric.Int64Observer) error {
	queueLengths, err := oe.collector.GetQueueLengths(ctx)
	if err != nil {
		return err
	}

	for queue, length := range queueLengths {
		observer.Observe(length, metric.WithAttributes(
			attribute.String("queue", queue),
		))
	}
	return nil
}

func (oe *OTelExporter) observeStateCounts(ctx context.Context, observer metric.Int64Observer) error {
	stateCounts, err := oe.collector.GetStateCounts(ctx)
	if err != nil {
		return err
	}

	for state, count := range stateCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("state", state),
		))
	}
	return nil
}

func (oe *OTelExporter) observeThroughput(ctx context.Context, observer metric.Int64Observer) error {
	throughput, err := oe.collector.GetThroughput(ctx)
	if err != nil {
		return err
	}

	observer.Observe(throughput.LastMinute, metric.WithAttributes(
		attribute.String("time.window", "1m"),
	))
	observer.Observe(throughput.LastFiveMinutes, metric.WithAttributes(
		attribute.String("time.window", "5m"),
	))
	observer.Observe(throughput.LastFifteenMinutes, metric.WithAttributes(
		attribute.String("time.window", "15m"),
	))
	return nil
}

func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.collector.GetActiveWorkers(ctx)
	if err != nil {
		return err
	}

	for status, list := range workers {
		observer.Observe(int64(len(list)), metric.WithAttributes(
			attribute.String("worker.status", status),
		))
	}
	return nil
}

// ServeHTTP returns the Prometheus scrape handler for this exporter's registry
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.gatherer, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}

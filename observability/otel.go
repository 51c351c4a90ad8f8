package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// NewOTelFactory returns a MetricFactory backed by an OpenTelemetry meter.
// attrs are attached to every measurement, typically the token symbol.
func NewOTelFactory(meter metric.Meter, attrs ...attribute.KeyValue) MetricFactory {
	return &otelFactory{
		meter: meter,
		attrs: metric.WithAttributes(attrs...),
	}
}

type otelFactory struct {
	meter metric.Meter
	attrs metric.MeasurementOption
}

func (f *otelFactory) Counter(name string) Counter {
	c, err := f.meter.Float64Counter(name)
	if err != nil {
		otel.Handle(err)
		c, _ = noop.Meter{}.Float64Counter(name) //nolint:errcheck // noop never fails
	}
	return &otelCounter{c: c, attrs: f.attrs}
}

func (f *otelFactory) Histogram(name string) Histogram {
	h, err := f.meter.Float64Histogram(name)
	if err != nil {
		otel.Handle(err)
		h, _ = noop.Meter{}.Float64Histogram(name) //nolint:errcheck // noop never fails
	}
	return &otelHistogram{h: h, attrs: f.attrs}
}

type otelCounter struct {
	c     metric.Float64Counter
	attrs metric.MeasurementOption
}

func (c *otelCounter) Inc() { c.Add(1) }

func (c *otelCounter) Add(v float64) {
	c.c.Add(context.Background(), v, c.attrs)
}

type otelHistogram struct {
	h     metric.Float64Histogram
	attrs metric.MeasurementOption
}

func (h *otelHistogram) Observe(v float64) {
	h.h.Record(context.Background(), v, h.attrs)
}

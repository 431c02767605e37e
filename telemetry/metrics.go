package telemetry

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "calendar-booking"

// Metrics records named counters as OpenTelemetry Int64Counters, creating
// each instrument on first use.
type Metrics struct {
	meter  metric.Meter
	logger *zap.Logger

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
}

// NewMetrics uses the global meter provider when mp is nil.
func NewMetrics(mp metric.MeterProvider, logger *zap.Logger) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return &Metrics{
		meter:    mp.Meter(meterName),
		logger:   logger.Named("metrics"),
		counters: make(map[string]metric.Int64Counter),
	}
}

func (m *Metrics) Increment(ctx context.Context, name string, tags map[string]string) {
	counter, err := m.counter(name)
	if err != nil {
		m.logger.Warn("create counter", zap.String("name", name), zap.Error(err))
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attributes(tags)...))
}

func (m *Metrics) counter(name string) (metric.Int64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[name]; ok {
		return c, nil
	}
	c, err := m.meter.Int64Counter(name)
	if err != nil {
		return nil, err
	}
	m.counters[name] = c
	return c, nil
}

func attributes(tags map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, attribute.String(k, tags[k]))
	}
	return kvs
}

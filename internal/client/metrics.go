package client

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/jmylchreest/smartscreen/internal/client"

// Interaction outcomes.
const (
	outcomeDelegated = "delegated"
	outcomeLocalStop = "local_stop"
	outcomeIgnored   = "ignored"
)

type metrics struct {
	interactions  metric.Int64Counter
	connects      metric.Int64Counter
	buildFailures metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	}

	m := &metrics{}
	var err error
	m.interactions, err = meter.Int64Counter("smartscreen.interactions",
		metric.WithDescription("Interaction triggers received from the host"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interactions counter: %w", err)
	}
	m.connects, err = meter.Int64Counter("smartscreen.connects",
		metric.WithDescription("Connect requests and their outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connects counter: %w", err)
	}
	m.buildFailures, err = meter.Int64Counter("smartscreen.build.failures",
		metric.WithDescription("Client builds that were aborted"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create build failures counter: %w", err)
	}
	return m, nil
}

func (m *metrics) interaction(trigger, outcome string) {
	m.interactions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) connect(reset bool, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.connects.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("reset", reset),
		attribute.String("result", result),
	))
}

func (m *metrics) buildFailed(reason string) {
	m.buildFailures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

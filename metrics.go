// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// StatsdClient is the subset of github.com/DataDog/datadog-go/v5/statsd's
// *statsd.Client used for the Dispatcher's own health metrics, mirrored
// from dd-trace-go's tracer.statsd field (SPEC_FULL §4.11). The Dispatcher
// emits one metric through it, a minitrace.traces_dropped count when its
// completion channel is full; Gauge and Timing are not called by the
// core. Declaring the
// narrow interface here rather than depending on *statsd.Client directly
// keeps the core testable without a real UDP sink, matching the teacher's
// own internal statsd abstraction.
type StatsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
}

// noopStatsd is used when no StatsdClient is configured, matching
// dd-trace-go's &statsd.NoOpClientDirect{} default.
type noopStatsd struct{}

func (noopStatsd) Count(string, int64, []string, float64) error   { return nil }
func (noopStatsd) Gauge(string, float64, []string, float64) error { return nil }
func (noopStatsd) Timing(string, time.Duration, []string, float64) error {
	return nil
}

func statsdOrNoop(c StatsdClient) StatsdClient {
	if c == nil {
		return noopStatsd{}
	}
	return c
}

// NewStatsdClient dials a real github.com/DataDog/datadog-go/v5/statsd
// client for use with WithStatsdClient, mirroring dd-trace-go's own
// construction of tracer.statsd in ddtrace/tracer/tracer.go.
func NewStatsdClient(addr string) (StatsdClient, error) {
	return statsd.New(addr, statsd.WithNamespace("minitrace."))
}

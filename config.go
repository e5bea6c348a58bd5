// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import "time"

// Config carries per-process tuning for the Collector/Dispatcher pipeline
// (§6 "Config options"). It is built with functional options and
// validated once, at SetReporter time, grounded on dd-trace-go's
// tracer.StartOption pattern (ddtrace/tracer/option.go).
type Config struct {
	// MaxSpansPerTrace is the truncation cap; zero means unbounded.
	MaxSpansPerTrace int
	// ReportInterval is the Dispatcher's wake period; a non-positive value
	// is replaced by the default at build time.
	ReportInterval time.Duration
	// BatchReportMaxSpans bounds how many spans one Reporter.Report call
	// carries; zero means unbounded (every trace drained on one Dispatcher
	// wake goes into a single call).
	BatchReportMaxSpans int
	// ReportBeforeRootFinish is stored but read by nothing: the Dispatcher
	// reports a trace only after its root's Collector is sealed, whatever
	// this is set to.
	ReportBeforeRootFinish bool
	// MaxTracesPerSecond rate-limits trace *admission* into the
	// Reporter, independent of per-trace truncation (SPEC_FULL §10.2,
	// §5.2). Zero means unlimited.
	MaxTracesPerSecond float64
	// StatsdClient optionally receives Dispatcher health metrics
	// (SPEC_FULL §4.11). Nil is a valid no-op default.
	StatsdClient StatsdClient
}

// defaultReportInterval matches dd-trace-go's flushInterval-class default
// cadence for a background drain loop, adapted to this core's
// report_interval default of 500ms (§6).
const defaultReportInterval = 500 * time.Millisecond

// defaultConfig returns the Config used when SetReporter is called with no
// options, matching §6's documented defaults.
func defaultConfig() Config {
	return Config{
		MaxSpansPerTrace:       0,
		ReportInterval:         defaultReportInterval,
		BatchReportMaxSpans:    0,
		ReportBeforeRootFinish: false,
		MaxTracesPerSecond:     0,
		StatsdClient:           nil,
	}
}

// Option mutates a Config being built by SetReporter.
type Option func(*Config)

// WithMaxSpansPerTrace sets the truncation cap (§6).
func WithMaxSpansPerTrace(n int) Option {
	return func(c *Config) { c.MaxSpansPerTrace = n }
}

// WithReportInterval overrides the Dispatcher's wake period.
func WithReportInterval(d time.Duration) Option {
	return func(c *Config) { c.ReportInterval = d }
}

// WithBatchReportMaxSpans bounds how many spans go into a single
// Reporter.Report call.
func WithBatchReportMaxSpans(n int) Option {
	return func(c *Config) { c.BatchReportMaxSpans = n }
}

// WithReportBeforeRootFinish sets Config.ReportBeforeRootFinish, which does
// not change when traces are reported (see the field).
func WithReportBeforeRootFinish(enabled bool) Option {
	return func(c *Config) { c.ReportBeforeRootFinish = enabled }
}

// WithMaxTracesPerSecond caps trace admission into the Reporter
// (SPEC_FULL §10.2).
func WithMaxTracesPerSecond(rps float64) Option {
	return func(c *Config) { c.MaxTracesPerSecond = rps }
}

// WithStatsdClient wires an optional health-metrics sink (SPEC_FULL
// §4.11).
func WithStatsdClient(client StatsdClient) Option {
	return func(c *Config) { c.StatsdClient = client }
}

func buildConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = defaultReportInterval
	}
	return cfg
}

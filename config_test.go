// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := buildConfig(nil)
	assert.Equal(t, 0, cfg.MaxSpansPerTrace)
	assert.Equal(t, defaultReportInterval, cfg.ReportInterval)
	assert.False(t, cfg.ReportBeforeRootFinish)
	assert.Nil(t, cfg.StatsdClient)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	cfg := buildConfig([]Option{
		WithMaxSpansPerTrace(10),
		WithReportInterval(time.Second),
		WithBatchReportMaxSpans(100),
		WithReportBeforeRootFinish(true),
		WithMaxTracesPerSecond(50),
	})
	assert.Equal(t, 10, cfg.MaxSpansPerTrace)
	assert.Equal(t, time.Second, cfg.ReportInterval)
	assert.Equal(t, 100, cfg.BatchReportMaxSpans)
	assert.True(t, cfg.ReportBeforeRootFinish)
	assert.Equal(t, 50.0, cfg.MaxTracesPerSecond)
}

func TestStatsdOrNoopDefaultsToNoop(t *testing.T) {
	client := statsdOrNoop(nil)
	assert.NoError(t, client.Count("x", 1, nil, 1))
	assert.NoError(t, client.Gauge("x", 1, nil, 1))
	assert.NoError(t, client.Timing("x", time.Second, nil, 1))
}

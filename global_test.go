// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetReporterEnablesAndStartsDispatcher(t *testing.T) {
	defer resetGlobalForTest()
	reporter := &recordingReporter{}
	SetReporter(reporter, WithReportInterval(10*time.Millisecond))

	assert.True(t, Enabled())

	h, _ := Root("R", RandomSpanContext())
	h.Finish()
	Flush()

	require.Eventually(t, func() bool {
		return len(reporter.all()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestFlushWithNoReporterIsNoop(t *testing.T) {
	defer resetGlobalForTest()
	resetGlobalForTest()
	assert.NotPanics(t, func() { Flush() })
}

func TestFlushTwiceIsNoop(t *testing.T) {
	defer resetGlobalForTest()
	reporter := &recordingReporter{}
	SetReporter(reporter, WithReportInterval(10*time.Millisecond))

	Flush()
	Flush()
}

func TestDisabledRootProducesNoopHandle(t *testing.T) {
	defer resetGlobalForTest()
	resetGlobalForTest()
	SetEnabled(false)

	h, ch := Root("R", RandomSpanContext())
	h.AddProperty("k", "v")
	h.Finish()

	assert.True(t, h.noop)
	assert.Equal(t, CollectorStats{}, ch.Stats())
}

// TestDisabledModeAllocatesNothing exercises §8 property 4 directly: with
// tracing disabled, Root, EnterWithParent, SetLocalParent, and LocalSpan
// must each hand back a shared singleton rather than allocating, so the
// externally observable allocation count per call is zero.
func TestDisabledModeAllocatesNothing(t *testing.T) {
	defer resetGlobalForTest()
	resetGlobalForTest()
	SetEnabled(false)

	ctx := RandomSpanContext()
	root, _ := Root("R", ctx)

	allocs := testing.AllocsPerRun(1000, func() {
		h, _ := Root("R", ctx)
		h.AddProperty("k", "v")
		h.Finish()
	})
	assert.Zero(t, allocs, "Root should not allocate while disabled")

	allocs = testing.AllocsPerRun(1000, func() {
		c := EnterWithParent("child", root)
		c.Finish()
	})
	assert.Zero(t, allocs, "EnterWithParent should not allocate while disabled")

	allocs = testing.AllocsPerRun(1000, func() {
		g := root.SetLocalParent()
		g.Close()
	})
	assert.Zero(t, allocs, "SetLocalParent should not allocate while disabled")

	allocs = testing.AllocsPerRun(1000, func() {
		g := LocalSpan("local")
		g.Close()
	})
	assert.Zero(t, allocs, "LocalSpan should not allocate while disabled")
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowCyclesMonotonic(t *testing.T) {
	a := NowCycles()
	time.Sleep(time.Millisecond)
	b := NowCycles()
	assert.GreaterOrEqual(t, b, a)
}

func TestAnchorRoundTrip(t *testing.T) {
	anchor := Anchor{CyclesZero: 1000, UnixNanoZero: 5_000_000_000, CyclesPerSec: 1e9}
	got := anchor.ToUnixNano(1000 + 250_000_000)
	assert.Equal(t, uint64(5_250_000_000), got)
}

func TestAnchorZeroDelta(t *testing.T) {
	anchor := Anchor{CyclesZero: 42, UnixNanoZero: 100, CyclesPerSec: 1e9}
	assert.Equal(t, uint64(100), anchor.ToUnixNano(42))
}

func TestRecalibrateAdvancesAnchor(t *testing.T) {
	before := CurrentAnchor()
	time.Sleep(time.Millisecond)
	Recalibrate()
	after := CurrentAnchor()
	assert.GreaterOrEqual(t, after.UnixNanoZero, before.UnixNanoZero)
}

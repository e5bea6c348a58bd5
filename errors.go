// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"sync/atomic"

	"github.com/minitrace-go/minitrace/internal/log"
)

// DropReason enumerates why a record was silently discarded (§7: "Dropped
// ... counted globally and per-Collector; never surfaced to user code").
type DropReason int

const (
	// DropQueueFull means the Dispatcher's completion channel was full, a
	// record or batch reached a Collector already sealed or a SpanHandle
	// already finished, or the Dispatcher's trace-rate limiter rejected a
	// trace.
	DropQueueFull DropReason = iota
	// DropMaxSpansExceeded means the per-trace max_spans_per_trace cap
	// was already reached.
	DropMaxSpansExceeded
	// DropReporterUninitialized means no Reporter has been registered
	// yet via SetReporter.
	DropReporterUninitialized
	// DropDisabled means the global enabled flag was false at root
	// construction.
	DropDisabled
)

func (r DropReason) String() string {
	switch r {
	case DropQueueFull:
		return "queue_full"
	case DropMaxSpansExceeded:
		return "max_spans_exceeded"
	case DropReporterUninitialized:
		return "reporter_uninitialized"
	case DropDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// MisuseKind enumerates programming errors that are asserted in debug
// builds and silently tolerated (by unwinding to a consistent state) in
// release (§7).
type MisuseKind int

const (
	// MisuseOutOfOrderGuardDrop means a guard was dropped out of LIFO
	// order relative to the stack it was pushed on.
	MisuseOutOfOrderGuardDrop MisuseKind = iota
	// MisuseBatchAttachedAfterSeal means a LocalSpans batch arrived for
	// a Collector that had already been sealed and handed off.
	MisuseBatchAttachedAfterSeal
)

func (k MisuseKind) String() string {
	switch k {
	case MisuseOutOfOrderGuardDrop:
		return "out_of_order_guard_drop"
	case MisuseBatchAttachedAfterSeal:
		return "batch_attached_after_seal"
	default:
		return "unknown"
	}
}

// globalCounters tracks process-wide drop/misuse totals, readable via
// Stats for diagnostics. Per-Collector counters live on Collector itself
// (see collector.go, CollectorStats).
var globalCounters struct {
	droppedTraces atomic.Uint64
	droppedSpans  atomic.Uint64
	misuses       atomic.Uint64
}

func countDrop(reason DropReason) {
	globalCounters.droppedSpans.Add(1)
	log.Debug("span dropped: %s", reason)
}

func countDroppedTrace(reason DropReason) {
	globalCounters.droppedTraces.Add(1)
	log.Debug("trace dropped: %s", reason)
}

func reportMisuse(kind MisuseKind) {
	globalCounters.misuses.Add(1)
	log.Warn("misuse detected: %s", kind)
}

// GlobalStats is a process-wide snapshot of drop/misuse counters.
type GlobalStats struct {
	DroppedTraces uint64
	DroppedSpans  uint64
	Misuses       uint64
}

// Stats returns a snapshot of process-wide counters.
func Stats() GlobalStats {
	return GlobalStats{
		DroppedTraces: globalCounters.droppedTraces.Load(),
		DroppedSpans:  globalCounters.droppedSpans.Load(),
		Misuses:       globalCounters.misuses.Load(),
	}
}

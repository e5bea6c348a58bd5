// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

// Property is an ordered (key, value) string pair attached to a span or
// event (§3, §9: "modelled as ordered sequence of (string, string)
// pairs"). Go strings are already cheap to share (immutable, backed by a
// pointer+len), so unlike the Rust lineage there is no separate
// static-vs-owned representation to model here.
type Property struct {
	Key   string
	Value string
}

// Event is a named, timestamped sub-occurrence within a span, carrying its
// own properties (§3 RawSpan.events; supplemented as a first-class
// operation in SPEC_FULL §10.1).
type Event struct {
	Name          string
	TimestampUnixNano uint64
	Properties    []Property
}

// RawSpan is the internal, pre-conversion representation of a span still
// expressed in cycle units (§3).
type RawSpan struct {
	SpanID      SpanID
	ParentID    SpanID
	BeginCycles uint64
	EndCycles   uint64 // 0 denotes an open span
	Name        string
	Properties  []Property
	Events      []Event
}

// isOpen reports whether the span has not yet been closed.
func (r *RawSpan) isOpen() bool { return r.EndCycles == 0 }

// SpanRecord is the public, post-conversion representation handed to a
// Reporter (§3, §6).
type SpanRecord struct {
	TraceID        TraceID
	SpanID         SpanID
	ParentID       SpanID
	BeginUnixNano  uint64
	DurationNano   uint64
	Name           string
	Properties     []Property
	Events         []Event
}

// toSpanRecord converts a RawSpan to a SpanRecord under the given trace id
// and anchor, clamping any end < begin to a zero duration and reporting
// whether clamping occurred (§4.6: "clamping any end < begin to 0 and
// flagging").
func toSpanRecord(traceID TraceID, anchor Anchor, r RawSpan) (rec SpanRecord, clamped bool) {
	beginNano := anchor.ToUnixNano(r.BeginCycles)
	endCycles := r.EndCycles
	if endCycles == 0 {
		endCycles = r.BeginCycles
	}
	var durationNano uint64
	if endCycles >= r.BeginCycles {
		durationNano = anchor.ToUnixNano(endCycles) - beginNano
	} else {
		clamped = true
	}
	return SpanRecord{
		TraceID:       traceID,
		SpanID:        r.SpanID,
		ParentID:      r.ParentID,
		BeginUnixNano: beginNano,
		DurationNano:  durationNano,
		Name:          r.Name,
		Properties:    r.Properties,
		Events:        r.Events,
	}, clamped
}

// LocalSpans is a detachable batch of RawSpans produced by one goroutine
// between two checkpoint markers (§3, §4.3 take_local_spans). Parent
// relations inside the batch are preserved as the RawSpans' own ParentID
// fields; any span whose ParentID is still the zero sentinel had no
// local parent at capture time and is reattached to whatever SpanHandle
// the batch is later pushed onto (§4.4 push_child_spans).
type LocalSpans struct {
	Spans []RawSpan
}

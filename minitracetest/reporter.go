// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

// Package minitracetest provides test doubles and helpers for code that
// depends on minitrace, grounded on dd-trace-go's in-repo mocktracer-style
// test helpers. RecordingReporter lets a test assert on exactly what was
// reported without standing up a real collector.
package minitracetest

import (
	"sync"

	"github.com/minitrace-go/minitrace"
)

// RecordingReporter implements minitrace.Reporter by capturing every
// reported batch in memory.
type RecordingReporter struct {
	mu      sync.Mutex
	batches [][]minitrace.SpanRecord
	flushes int
}

// Report implements minitrace.Reporter.
func (r *RecordingReporter) Report(batch []minitrace.SpanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]minitrace.SpanRecord, len(batch))
	copy(cp, batch)
	r.batches = append(r.batches, cp)
}

// Flush implements minitrace.Reporter.
func (r *RecordingReporter) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
}

// Records returns every SpanRecord reported so far, across all batches,
// in report order.
func (r *RecordingReporter) Records() []minitrace.SpanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []minitrace.SpanRecord
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

// Batches returns a copy of every batch exactly as it was handed to
// Report, preserving batching boundaries.
func (r *RecordingReporter) Batches() [][]minitrace.SpanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]minitrace.SpanRecord, len(r.batches))
	copy(out, r.batches)
	return out
}

// Flushes returns how many times Flush has been called.
func (r *RecordingReporter) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// ByName returns every reported SpanRecord with the given name.
func (r *RecordingReporter) ByName(name string) []minitrace.SpanRecord {
	var out []minitrace.SpanRecord
	for _, rec := range r.Records() {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

// Reset clears every recorded batch and flush count.
func (r *RecordingReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
	r.flushes = 0
}

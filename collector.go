// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"sync/atomic"

	uatomic "go.uber.org/atomic"
)

// collectorSegmentSize is the fixed chunk size backing the lock-free MPSC
// queue described in §4.5 ("fixed-size chunks linked into a list"),
// grounded on the segment-queue shape in the retrieved trace-mpsc.go
// reference (a linked list of fixed slices with atomic head/tail
// pointers, rather than a single growable slice behind a mutex).
const collectorSegmentSize = 64

// segmentItem is one queued arrival: either a finished cross-context
// RawSpan or a batch of thread-local spans pushed via PushChildSpans.
type segmentItem struct {
	span  *RawSpan
	batch *LocalSpans
}

type segment struct {
	items [collectorSegmentSize]segmentItem
	n     atomic.Int32
	next  atomic.Pointer[segment]
}

// segmentQueue is a lock-free, wait-free-enqueue, single-consumer MPSC
// queue of segments. Producers (SpanHandle drops on any goroutine) append
// under CAS; the Dispatcher is the sole consumer and walks segments in
// arrival order without needing to synchronize with producers beyond the
// atomic pointer reads (§4.5, §5: "producer-multi, consumer-single").
type segmentQueue struct {
	head atomic.Pointer[segment]
	tail atomic.Pointer[segment]
}

func newSegmentQueue() *segmentQueue {
	q := &segmentQueue{}
	seg := &segment{}
	q.head.Store(seg)
	q.tail.Store(seg)
	return q
}

// push appends one item, allocating a new segment if the current tail is
// full. It never refuses an item; cap checks are the caller's job.
func (q *segmentQueue) push(item segmentItem) {
	for {
		tail := q.tail.Load()
		idx := tail.n.Add(1) - 1
		if idx < collectorSegmentSize {
			tail.items[idx] = item
			return
		}
		// tail is full (or a racing producer just claimed the last
		// slot); ensure the next segment exists, then retry against it.
		next := tail.next.Load()
		if next == nil {
			next = &segment{}
			if !tail.next.CompareAndSwap(nil, next) {
				next = tail.next.Load()
			}
		}
		q.tail.CompareAndSwap(tail, next)
	}
}

// drain removes and returns every item currently visible, in arrival
// order, advancing head past fully-consumed segments. Only the Dispatcher
// goroutine calls this.
func (q *segmentQueue) drain() []segmentItem {
	var out []segmentItem
	for {
		head := q.head.Load()
		n := int(head.n.Load())
		if n > collectorSegmentSize {
			n = collectorSegmentSize
		}
		out = append(out, head.items[:n]...)
		next := head.next.Load()
		if next == nil {
			break
		}
		q.head.Store(next)
	}
	return out
}

// Collector aggregates raw span records for one root (§4.5). It is
// created when a root SpanHandle is minted and sealed (handed to the
// Dispatcher) once its refcount reaches zero. Only SpanHandles hold
// references: a LocalParentGuard or a detached LocalSpans batch does not,
// so a batch that arrives after the seal is dropped and counted as a
// MisuseBatchAttachedAfterSeal.
type Collector struct {
	traceID      TraceID
	rootParentID SpanID
	config       Config

	queue *segmentQueue

	refs   uatomic.Int32
	sealed uatomic.Bool

	received  uatomic.Uint64
	dropped   uatomic.Uint64
	truncated uatomic.Bool
}

func newCollector(traceID TraceID, cfg Config) *Collector {
	c := &Collector{
		traceID: traceID,
		config:  cfg,
		queue:   newSegmentQueue(),
	}
	c.refs.Store(1)
	return c
}

// incRef is called whenever a handle sharing this Collector is cloned.
func (c *Collector) incRef() { c.refs.Add(1) }

// decRef is called when a handle referring to this Collector is dropped.
// It reports whether this was the last reference (the Collector should
// now be sealed and hande off to the Dispatcher).
func (c *Collector) decRef() bool {
	return c.refs.Add(-1) == 0
}

// pushSpan enqueues one finished cross-context RawSpan, subject to the
// max_spans_per_trace cap (§4.5 backpressure).
func (c *Collector) pushSpan(span RawSpan) {
	if c.sealed.Load() {
		reportMisuse(MisuseBatchAttachedAfterSeal)
		countDrop(DropQueueFull)
		return
	}
	if c.config.MaxSpansPerTrace > 0 && int(c.received.Load()) >= c.config.MaxSpansPerTrace {
		c.truncated.Store(true)
		c.dropped.Add(1)
		countDrop(DropMaxSpansExceeded)
		return
	}
	c.received.Add(1)
	s := span
	c.queue.push(segmentItem{span: &s})
}

// pushBatch enqueues a LocalSpans batch (§4.4 push_child_spans).
func (c *Collector) pushBatch(batch LocalSpans) {
	if c.sealed.Load() {
		reportMisuse(MisuseBatchAttachedAfterSeal)
		countDrop(DropQueueFull)
		return
	}
	if c.config.MaxSpansPerTrace > 0 {
		remaining := c.config.MaxSpansPerTrace - int(c.received.Load())
		if remaining <= 0 {
			c.truncated.Store(true)
			c.dropped.Add(uint64(len(batch.Spans)))
			countDrop(DropMaxSpansExceeded)
			return
		}
		if len(batch.Spans) > remaining {
			c.dropped.Add(uint64(len(batch.Spans) - remaining))
			c.truncated.Store(true)
			batch.Spans = batch.Spans[:remaining]
		}
	}
	c.received.Add(uint64(len(batch.Spans)))
	b := batch
	c.queue.push(segmentItem{batch: &b})
}

// seal marks the Collector closed: no further pushes are accepted and it
// is ready for the Dispatcher to flatten.
func (c *Collector) seal() {
	c.sealed.Store(true)
}

// CollectorStats is the observable drop/truncation snapshot exposed via
// CollectorHandle.Stats (SPEC_FULL §10.3).
type CollectorStats struct {
	SpansReceived uint64
	SpansDropped  uint64
	Truncated     bool
}

func (c *Collector) stats() CollectorStats {
	return CollectorStats{
		SpansReceived: c.received.Load(),
		SpansDropped:  c.dropped.Load(),
		Truncated:     c.truncated.Load(),
	}
}

// CollectorHandle is returned alongside a root SpanHandle so the
// application can observe (but not mutate) the root's aggregation state
// (§4.4 root(), SPEC_FULL §10.3).
type CollectorHandle struct {
	collector *Collector
}

// Stats returns a snapshot of this trace's drop/truncation counters.
func (h CollectorHandle) Stats() CollectorStats {
	if h.collector == nil {
		return CollectorStats{}
	}
	return h.collector.stats()
}

// TraceID returns the trace id this Collector is aggregating.
func (h CollectorHandle) TraceID() TraceID {
	if h.collector == nil {
		return TraceID{}
	}
	return h.collector.traceID
}

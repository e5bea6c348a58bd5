// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import "sync"

// crossContextSpanIDGen mints span ids for SpanHandles, as distinct from
// the per-goroutine generators LocalStore uses for purely local spans
// (§4.2: ids are cheap to mint from any counter seeded with a random high
// 32 bits; a SpanHandle is not tied to any one goroutine's store).
var crossContextSpanIDGen = newSpanIDGen()

// noopSpanHandle is the shared value every disabled-mode entry point
// returns. Every method on it checks h.noop before touching any other
// field (including the mutex), so handing out the same pointer to every
// caller is safe and keeps the disabled path allocation-free (§8 property
// 4: "With enable=false, the externally observable memory allocation
// count per root and per local span is zero").
var noopSpanHandle = &SpanHandle{noop: true}

// noopLocalParentGuard is the shared value SetLocalParent returns when h is
// nil or noop. Close on a LocalParentGuard only ever acts when sg/store are
// non-nil, so a zero-value guard shared across every disabled caller is safe.
var noopLocalParentGuard = &LocalParentGuard{}

// SpanHandle is the thread-safe, cross-context span object of §4.4. It
// owns (or shares) a Collector, accumulates inline properties/events and
// any attached LocalSpans batches, and folds everything into one RawSpan
// on Finish.
type SpanHandle struct {
	collector   *Collector
	spanID      SpanID
	parentID    SpanID
	beginCycles uint64
	name        string

	mu         sync.Mutex
	properties []Property
	events     []Event
	batches    []LocalSpans

	finished bool
	noop     bool
}

// Root mints or adopts a trace id from ctx, allocates a Collector, and
// returns the new root SpanHandle paired with a CollectorHandle through
// which the application observes it (§4.4 root, §6). The handle offers no
// configuration; the Collector takes the Config installed by SetReporter.
func Root(name string, ctx SpanContext) (*SpanHandle, CollectorHandle) {
	if !Enabled() {
		countDrop(DropDisabled)
		return noopSpanHandle, CollectorHandle{}
	}

	traceID := ctx.TraceID
	if traceID.IsZero() {
		traceID = NewTraceID()
	}

	cfg := currentConfig()
	collector := newCollector(traceID, cfg)
	collector.rootParentID = ctx.SpanID

	h := &SpanHandle{
		collector:   collector,
		spanID:      crossContextSpanIDGen.next(),
		parentID:    ctx.SpanID,
		beginCycles: NowCycles(),
		name:        name,
	}
	return h, CollectorHandle{collector: collector}
}

// EnterWithParent creates a child SpanHandle sharing parent's Collector
// (§4.4 enter_with_parent).
func EnterWithParent(name string, parent *SpanHandle) *SpanHandle {
	if parent == nil || parent.noop || !Enabled() {
		return noopSpanHandle
	}
	parent.collector.incRef()
	return &SpanHandle{
		collector:   parent.collector,
		spanID:      crossContextSpanIDGen.next(),
		parentID:    parent.spanID,
		beginCycles: NowCycles(),
		name:        name,
	}
}

// EnterWithParents creates one handle per distinct parent Collector, so
// the same unit of work appears in every enclosing trace (§4.4
// enter_with_parents).
func EnterWithParents(name string, parents []*SpanHandle) []*SpanHandle {
	out := make([]*SpanHandle, 0, len(parents))
	seen := make(map[*Collector]bool, len(parents))
	for _, p := range parents {
		if p == nil || p.noop {
			continue
		}
		if seen[p.collector] {
			continue
		}
		seen[p.collector] = true
		out = append(out, EnterWithParent(name, p))
	}
	return out
}

// SetLocalParent installs h as the implicit local parent on the calling
// goroutine's LocalStore for the returned guard's lifetime. Closing the
// guard delivers every local span opened under it to h's Collector (§4.4
// set_local_parent).
func (h *SpanHandle) SetLocalParent() *LocalParentGuard {
	if h == nil || h.noop {
		return noopLocalParentGuard
	}
	store := currentLocalStore()
	floor := len(store.spans)
	sg := attachPoint(store, h.spanID)
	return &LocalParentGuard{sg: sg, store: store, floor: floor, collector: h.collector, attachID: h.spanID}
}

// AddProperty attaches one (key, value) pair.
func (h *SpanHandle) AddProperty(key, value string) {
	if h == nil || h.noop {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		countDrop(DropQueueFull)
		return
	}
	h.properties = append(h.properties, Property{Key: key, Value: value})
}

// AddProperties attaches a sequence of (key, value) pairs.
func (h *SpanHandle) AddProperties(props []Property) {
	if h == nil || h.noop || len(props) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		countDrop(DropQueueFull)
		return
	}
	h.properties = append(h.properties, props...)
}

// AddEvent attaches a named, timestamped occurrence (SPEC_FULL §10.1).
func (h *SpanHandle) AddEvent(name string, props []Property) {
	if h == nil || h.noop {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		countDrop(DropQueueFull)
		return
	}
	h.events = append(h.events, Event{
		Name:              name,
		TimestampUnixNano: CurrentAnchor().ToUnixNano(NowCycles()),
		Properties:        props,
	})
}

// PushChildSpans attaches a previously detached LocalSpans batch (§4.4
// push_child_spans). Spans in the batch with no local parent at capture
// time are reparented to h on Finish.
func (h *SpanHandle) PushChildSpans(batch LocalSpans) {
	if h == nil || h.noop || len(batch.Spans) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		reportMisuse(MisuseBatchAttachedAfterSeal)
		countDrop(DropQueueFull)
		return
	}
	h.batches = append(h.batches, batch)
}

// Elapsed returns the nanoseconds elapsed since h was created.
func (h *SpanHandle) Elapsed() uint64 {
	if h == nil || h.noop {
		return 0
	}
	return NowCycles() - h.beginCycles
}

// Finish ends h: records end cycles, folds inline properties/events and
// any attached LocalSpans batches into the Collector, and releases h's
// reference on the Collector, sealing and dispatching it if this was the
// last outstanding handle (§4.4 Drop, §3 lifecycle).
func (h *SpanHandle) Finish() {
	if h == nil || h.noop {
		return
	}
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	raw := RawSpan{
		SpanID:      h.spanID,
		ParentID:    h.parentID,
		BeginCycles: h.beginCycles,
		EndCycles:   NowCycles(),
		Name:        h.name,
		Properties:  h.properties,
		Events:      h.events,
	}
	batches := h.batches
	h.mu.Unlock()

	collector := h.collector
	collector.pushSpan(raw)
	for _, batch := range batches {
		reparentUnparented(batch.Spans, h.spanID)
		collector.pushBatch(batch)
	}

	if collector.decRef() {
		dispatchSealed(collector)
	}
}

// reparentUnparented reassigns ParentID on every span in spans that is
// still the zero sentinel (had no local parent when captured) to
// parentID (§4.4 push_child_spans folding into the attaching handle).
func reparentUnparented(spans []RawSpan, parentID SpanID) {
	for i := range spans {
		if spans[i].ParentID == noParentSpanID {
			spans[i].ParentID = parentID
		}
	}
}

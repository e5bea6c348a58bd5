// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"github.com/minitrace-go/minitrace/internal/gls"
)

// frame is one entry of a LocalStore's parent stack (§4.3). A plain
// open-span frame carries spanIndex >= 0 and parentID the span id that
// was on top of the stack when it was pushed. A synthetic attach_point
// frame carries spanIndex == attachFrameSentinel and attachID the cross-
// context span id it stands in for.
type frame struct {
	spanIndex int
	parentID  SpanID
	attachID  SpanID
	isAttach  bool
}

const attachFrameSentinel = -1

// localStore is the per-goroutine state described in §4.3: a stack of
// frames and an append-only buffer of RawSpans. One instance is created
// lazily per goroutine and never shared; the goroutine that owns it never
// needs to lock it. Checkpoint watermarks (where a detach/collect range
// starts) are tracked by the caller (LocalCollector, the local-parent
// guard) rather than on the store itself, since more than one such range
// can be open at once (nested attach points).
type localStore struct {
	stack   []frame
	spans   []RawSpan
	spanGen *spanIDGen
	// removed counts spans excised by takeLocalSpansRange; a LocalGuard's
	// index is its span's position plus the removed count at push time.
	removed int
}

func newLocalStore() *localStore {
	return &localStore{spanGen: newSpanIDGen()}
}

func (s *localStore) topSpanID() SpanID {
	if len(s.stack) == 0 {
		return noParentSpanID
	}
	top := s.stack[len(s.stack)-1]
	if top.isAttach {
		return top.attachID
	}
	return s.spans[top.spanIndex].SpanID
}

// LocalGuard is returned by pushLocal; dropping it (Close) closes the
// span and pops the stack entry (§4.3 pop_local).
type LocalGuard struct {
	store *localStore
	index int
	live  bool
}

// Close ends the guarded span. It is idempotent; calling it more than
// once after the first has no further effect.
func (g *LocalGuard) Close() {
	if g == nil || !g.live {
		return
	}
	g.live = false
	g.store.popLocal(g.index)
}

// noopLocalGuard is the shared value LocalSpan returns when tracing is
// disabled. Close on it is a no-op (live is false), so handing out the same
// pointer to every disabled caller is safe and keeps the path allocation-free.
var noopLocalGuard = &LocalGuard{live: false}

// pushLocal opens a new local span on the calling goroutine's store and
// returns a guard that must be Closed to end it (§4.3 push_local).
func pushLocal(store *localStore, name string) *LocalGuard {
	parent := store.topSpanID()
	idx := len(store.spans)
	store.spans = append(store.spans, RawSpan{
		SpanID:      store.spanGen.next(),
		ParentID:    parent,
		BeginCycles: NowCycles(),
		Name:        name,
	})
	store.stack = append(store.stack, frame{spanIndex: idx, parentID: parent})
	return &LocalGuard{store: store, index: idx + store.removed, live: true}
}

// popLocal implements §4.3 pop_local: writes end cycles, pops the stack
// entry, and verifies the popped frame matches index — unwinding to it
// (closing everything above it too) and reporting a misuse if not, per
// §7 "out_of_order_guard_drop ... in release, the core unwinds local
// state to a consistent position and continues".
func (s *localStore) popLocal(index int) {
	index -= s.removed
	if index >= 0 && index < len(s.spans) && s.spans[index].EndCycles == 0 {
		s.spans[index].EndCycles = NowCycles()
	}

	pos := -1
	for i := len(s.stack) - 1; i >= 0; i-- {
		if !s.stack[i].isAttach && s.stack[i].spanIndex == index {
			pos = i
			break
		}
	}
	if pos < 0 {
		// Frame already popped (double Close) or never matched; nothing
		// to unwind.
		return
	}
	if pos != len(s.stack)-1 {
		reportMisuse(MisuseOutOfOrderGuardDrop)
		// Close every still-open span above pos so its RawSpan gets a
		// sane end timestamp instead of lingering "open" forever.
		for i := len(s.stack) - 1; i > pos; i-- {
			fr := s.stack[i]
			if !fr.isAttach && s.spans[fr.spanIndex].EndCycles == 0 {
				s.spans[fr.spanIndex].EndCycles = NowCycles()
			}
		}
	}
	s.stack = s.stack[:pos]
}

// StackGuard is returned by attachPoint; dropping it (Close) pops the
// synthetic frame (§4.3 attach_point).
type StackGuard struct {
	store *localStore
	depth int
	live  bool
}

// Close removes the attach-point frame, restoring the previous implicit
// parent.
func (g *StackGuard) Close() {
	if g == nil || !g.live {
		return
	}
	g.live = false
	s := g.store
	pos := -1
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].isAttach && i == g.depth {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	if pos != len(s.stack)-1 {
		reportMisuse(MisuseOutOfOrderGuardDrop)
		for i := len(s.stack) - 1; i > pos; i-- {
			fr := s.stack[i]
			if !fr.isAttach && s.spans[fr.spanIndex].EndCycles == 0 {
				s.spans[fr.spanIndex].EndCycles = NowCycles()
			}
		}
	}
	s.stack = s.stack[:pos]
}

// attachPoint pushes a synthetic frame identifying a cross-context parent
// as the implicit local parent for the guard's lifetime (§4.3
// attach_point). Nested attaches stack normally.
func attachPoint(store *localStore, attachID SpanID) *StackGuard {
	depth := len(store.stack)
	store.stack = append(store.stack, frame{spanIndex: attachFrameSentinel, attachID: attachID, isAttach: true})
	return &StackGuard{store: store, depth: depth, live: true}
}

// takeLocalSpansRange snapshots every closed span in [floor, openFloor)
// — openFloor being the lowest index still referenced by an open frame —
// and returns it as a LocalSpans batch; the store keeps any still-open
// RawSpans at the tail, renumbering the stack's indices so later pops
// stay valid (§4.3 take_local_spans). floor is supplied by the caller
// (LocalCollector.Start, or a SpanHandle's local-parent guard) since more
// than one such range can be tracked concurrently via nested attach
// points.
func takeLocalSpansRange(store *localStore, floor int) LocalSpans {
	openFloor := len(store.spans)
	for _, fr := range store.stack {
		if !fr.isAttach && fr.spanIndex < openFloor {
			openFloor = fr.spanIndex
		}
	}
	if floor > openFloor {
		floor = openFloor
	}

	closed := store.spans[floor:openFloor]
	batch := make([]RawSpan, len(closed))
	copy(batch, closed)

	// Excise [floor:openFloor) in place. Anything below floor belongs to
	// an enclosing, still-open scope and must survive; anything at or
	// above openFloor is still open and shifts down to fill the gap.
	shift := openFloor - floor
	if shift > 0 {
		store.removed += shift
		kept := make([]RawSpan, 0, len(store.spans)-shift)
		kept = append(kept, store.spans[:floor]...)
		kept = append(kept, store.spans[openFloor:]...)
		store.spans = kept

		for i := range store.stack {
			if !store.stack[i].isAttach && store.stack[i].spanIndex >= openFloor {
				store.stack[i].spanIndex -= shift
			}
		}
	}

	return LocalSpans{Spans: batch}
}

// localStoreRegistry maps goroutine id -> *localStore (internal/gls).
var localStoreRegistry = gls.NewRegistry()

// currentLocalStore returns (creating if necessary) the calling
// goroutine's LocalStore.
func currentLocalStore() *localStore {
	return localStoreRegistry.GetOrCreate(func() interface{} { return newLocalStore() }).(*localStore)
}

// LocalSpan opens a local span parented to whatever implicit parent is
// currently on top of the calling goroutine's stack — either another
// open local span or a SpanHandle's SetLocalParent attach point (§6
// LocalSpan::enter_with_local_parent). It returns a guard that must be
// Closed (typically via defer) to end the span.
func LocalSpan(name string) *LocalGuard {
	if !Enabled() {
		return noopLocalGuard
	}
	return pushLocal(currentLocalStore(), name)
}

// LocalCollector groups a run of local spans opened between Start and
// Collect into one detachable LocalSpans batch (§6
// LocalCollector::start()/collect()).
type LocalCollector struct {
	store *localStore
	floor int
}

// StartLocalCollector begins a checkpoint on the calling goroutine's
// store; spans opened afterward are included in the batch returned by
// Collect.
func StartLocalCollector() *LocalCollector {
	store := currentLocalStore()
	return &LocalCollector{store: store, floor: len(store.spans)}
}

// Collect snapshots every local span opened since Start into a LocalSpans
// batch, ready to be sent to another goroutine and attached via
// SpanHandle.PushChildSpans.
func (c *LocalCollector) Collect() LocalSpans {
	return takeLocalSpansRange(c.store, c.floor)
}

// LocalParentGuard is returned by SpanHandle.SetLocalParent. Closing it
// both restores the previous implicit parent and folds every local span
// opened under it into a LocalSpans batch pushed straight to the owning
// Collector, so a synchronous caller never needs to call LocalCollector
// itself (§4.4 set_local_parent, §4.3 take_local_spans).
type LocalParentGuard struct {
	sg        *StackGuard
	store     *localStore
	floor     int
	collector *Collector
	attachID  SpanID
}

// Close ends the local-parent scope and delivers whatever local spans
// were opened within it to the owning Collector.
func (g *LocalParentGuard) Close() {
	if g == nil || g.sg == nil || !g.sg.live {
		return
	}
	g.sg.Close()
	batch := takeLocalSpansRange(g.store, g.floor)
	if len(batch.Spans) == 0 {
		return
	}
	reparentUnparented(batch.Spans, g.attachID)
	g.collector.pushBatch(batch)
}

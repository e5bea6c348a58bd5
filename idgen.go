// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync/atomic"
)

// TraceID is a 128-bit value unique per trace, represented as two 64-bit
// halves (§3: "TraceId: 128-bit value unique per trace").
type TraceID struct {
	High uint64
	Low  uint64
}

// IsZero reports whether t is the zero value, used as the "no trace"
// sentinel in a few places (e.g. a disabled no-op handle).
func (t TraceID) IsZero() bool { return t.High == 0 && t.Low == 0 }

// NewTraceID mints a fresh, cryptographically uniform trace id (§4.2).
func NewTraceID() TraceID {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unreachable on supported
		// platforms; fall back rather than panic on the hot path.
		return TraceID{High: mrand.Uint64(), Low: mrand.Uint64()}
	}
	return TraceID{
		High: binary.BigEndian.Uint64(buf[0:8]),
		Low:  binary.BigEndian.Uint64(buf[8:16]),
	}
}

// SpanID is a 64-bit value unique within a trace.
type SpanID uint64

// noParentSpanID is the sentinel used for a root's parent_id (§3: "A root
// has parent = 0").
const noParentSpanID SpanID = 0

// spanIDGen draws span ids from a per-thread (here: per-LocalStore)
// counter seeded with a random high 32 bits, so ids mint cheaply (a single
// atomic add) while still being unique within a trace with overwhelming
// probability (§4.2).
type spanIDGen struct {
	counter atomic.Uint64
}

func newSpanIDGen() *spanIDGen {
	g := &spanIDGen{}
	seed := uint64(mrand.Uint32()) << 32
	g.counter.Store(seed)
	return g
}

func (g *spanIDGen) next() SpanID {
	return SpanID(g.counter.Add(1))
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package gls

import "sync"

// Registry maps goroutine ids to arbitrary per-goroutine values. It is the
// mechanism minitrace's LocalStore uses to give every goroutine its own
// append-only span buffer and parent stack without a language-level
// thread-local slot.
//
// Backed by sync.Map rather than a mutex-guarded map: a given key (a
// goroutine id) is only ever touched by the one goroutine it identifies,
// so Get/GetOrCreate never contend with another goroutine over the same
// entry and never take a registry-wide lock on the hot path — only
// Len/Sweep, which genuinely need to walk every entry, pay for
// synchronization.
//
// Entries are not removed when a goroutine exits (Go has no exit hook to
// key cleanup off), so callers that create unboundedly many short-lived
// goroutines should periodically call Sweep with a liveness check, rather
// than relying on entries being reclaimed automatically.
type Registry struct {
	vals sync.Map // uint64 -> interface{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns the value stored for the calling goroutine, and whether one
// was present.
func (r *Registry) Get() (interface{}, bool) {
	return r.vals.Load(ID())
}

// GetOrCreate returns the value stored for the calling goroutine, creating
// it with new() if none exists yet. Safe without any lock: no other
// goroutine ever reads or writes this goroutine's own key.
func (r *Registry) GetOrCreate(new func() interface{}) interface{} {
	id := ID()
	if v, ok := r.vals.Load(id); ok {
		return v
	}
	v, _ := r.vals.LoadOrStore(id, new())
	return v
}

// Delete removes the entry for the calling goroutine, if any.
func (r *Registry) Delete() {
	r.vals.Delete(ID())
}

// Len reports how many goroutines currently have an entry. Intended for
// tests and diagnostics, not the hot path.
func (r *Registry) Len() int {
	n := 0
	r.vals.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Sweep removes every entry for which alive reports false. Nothing else
// signals that a goroutine has exited, so a host runs this on its own
// schedule; minitrace itself never calls it.
func (r *Registry) Sweep(alive func(id uint64, v interface{}) bool) {
	r.vals.Range(func(k, v interface{}) bool {
		id := k.(uint64)
		if !alive(id, v) {
			r.vals.Delete(id)
		}
		return true
	})
}

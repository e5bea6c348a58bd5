// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

// Package gls emulates the per-thread storage that spec.md's LocalStore
// design assumes. Go has no native thread-local storage (goroutines are
// not OS threads and carry no language-level local slot), so "per-thread"
// is re-architected here as "per-goroutine", keyed by the runtime's own
// goroutine id, read directly off the g struct via petermattis/goid
// rather than parsed out of a captured runtime.Stack() trace — the same
// choice the cockroachdb tracer makes for this exact concern (see
// DESIGN.md). ID is a couple of assembly instructions, not a stack
// capture and string parse, so it is cheap enough to call on every
// LocalStore access.
package gls

import "github.com/petermattis/goid"

// ID returns the id of the calling goroutine, as assigned by the Go
// runtime. It is stable for the lifetime of the goroutine and is the
// only portable handle Go exposes for "which thread of execution am I".
func ID() uint64 {
	return uint64(goid.Get())
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"sync"
	"sync/atomic"
)

// enabled is the process-wide flag of §4.8. Root construction checks it
// exactly once; when false every operation reduces to a no-op handle.
var enabled atomic.Bool

// Enabled reports whether the library is currently accepting new roots.
func Enabled() bool { return enabled.Load() }

// SetEnabled flips the process-wide enable flag.
func SetEnabled(v bool) { enabled.Store(v) }

// globalConfig holds the Config installed by the most recent SetReporter
// call. Stored behind atomic.Value, mirroring dd-trace-go's
// internal.SetGlobalTracer/GetGlobalTracer one-shot-initializer pattern
// (ddtrace/internal/globaltracer.go) so readers never observe a partially
// constructed Config (§9: "one-shot initializer + atomic pointer; readers
// may not see writes before the initializer completes").
var globalConfig atomic.Value // holds Config

func currentConfig() Config {
	if v := globalConfig.Load(); v != nil {
		return v.(Config)
	}
	return defaultConfig()
}

var setReporterMu sync.Mutex

// SetReporter installs reporter and cfg as the process-wide destination
// for completed traces and sets the enable flag. Each call stops the
// Dispatcher started by the previous call, if any (which drains its queued
// traces and calls its reporter's Flush), and starts a fresh Dispatcher
// for the new reporter and Config; the swap is serialized between
// concurrent calls (§4.8 set_reporter).
func SetReporter(reporter Reporter, opts ...Option) {
	if reporter == nil {
		reporter = NoopReporter{}
	}
	cfg := buildConfig(opts)
	globalConfig.Store(cfg)
	enabled.Store(true)

	setReporterMu.Lock()
	defer setReporterMu.Unlock()

	dispatcherMu.Lock()
	defer dispatcherMu.Unlock()

	if activeDisp != nil {
		activeDisp.stop()
	}
	d := newDispatcher(reporter, cfg)
	d.start()
	activeDisp = d
}

// Flush signals the Dispatcher to drain every sealed trace known at the
// time of the call and to call the Reporter's Flush, then returns (§4.8
// flush). Calling it with no active Dispatcher (SetReporter never
// called) is a no-op.
func Flush() {
	dispatcherMu.RLock()
	d := activeDisp
	dispatcherMu.RUnlock()
	if d == nil {
		return
	}

	reply := make(chan struct{})
	select {
	case d.flushCh <- reply:
		<-reply
	default:
		// A flush is already in flight on the worker goroutine; there is
		// nothing more for this call to wait on, matching the "flush()
		// twice with no activity between is a no-op" property (§8).
	}
}

// resetGlobalForTest tears down any active Dispatcher and clears the
// process-wide flag/config. It exists for this module's own tests, which
// cannot run in a single shared process state across independent
// scenarios otherwise.
func resetGlobalForTest() {
	dispatcherMu.Lock()
	d := activeDisp
	activeDisp = nil
	dispatcherMu.Unlock()
	if d != nil {
		d.stop()
	}
	enabled.Store(false)
	globalConfig = atomic.Value{}
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

// Package minitrace is the in-process span capture and aggregation
// engine of a distributed tracing runtime: a thread-local fast path for
// synchronous spans (LocalSpan, LocalCollector), a thread-safe
// cross-context path for spans shared across goroutines or processes
// (SpanHandle), a background Dispatcher that tail-samples and batches
// completed traces, and a pluggable Reporter sink.
//
// A typical program calls SetReporter once at startup, opens a root span
// per unit of incoming work with Root, and attaches local children with
// LocalSpan under a SetLocalParent scope:
//
//	minitrace.SetReporter(myReporter, minitrace.WithMaxSpansPerTrace(1000))
//
//	root, _ := minitrace.Root("handle-request", minitrace.RandomSpanContext())
//	defer root.Finish()
//	guard := root.SetLocalParent()
//	defer guard.Close()
//
//	span := minitrace.LocalSpan("decode-body")
//	defer span.Close()
//
// Wire encoders, attribute macros, and logging-facade integration are
// out of scope: this package produces SpanRecord values and nothing
// else.
package minitrace

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

// Package ext holds well-known property and event keys, grounded on
// dd-trace-go's ddtrace/ext package of tag-name constants. Using these
// instead of ad-hoc strings keeps cross-service property keys consistent
// without the core needing to know what any of them mean.
package ext

const (
	// Component names the library or framework a span originated from.
	Component = "component"
	// SpanKind classifies a span's role: client, server, producer,
	// consumer, or internal.
	SpanKind = "span.kind"
	// Error marks a span as having failed; value is "true" or "false".
	Error = "error"
	// ErrorMsg carries a human-readable error message.
	ErrorMsg = "error.msg"
	// ErrorType carries the error's type name.
	ErrorType = "error.type"
	// ErrorStack carries a captured stack trace.
	ErrorStack = "error.stack"
	// PeerService names the remote service a span's work addresses.
	PeerService = "peer.service"
	// HTTPMethod is the HTTP method of a request span.
	HTTPMethod = "http.method"
	// HTTPURL is the URL of a request span.
	HTTPURL = "http.url"
	// HTTPStatusCode is the response status code of a request span.
	HTTPStatusCode = "http.status_code"
)

const (
	// SpanKindClient marks a span that issues an outbound call.
	SpanKindClient = "client"
	// SpanKindServer marks a span that handles an inbound call.
	SpanKindServer = "server"
	// SpanKindProducer marks a span that publishes a message.
	SpanKindProducer = "producer"
	// SpanKindConsumer marks a span that handles a published message.
	SpanKindConsumer = "consumer"
	// SpanKindInternal marks a span with no remote counterpart.
	SpanKindInternal = "internal"
)

const (
	// EventException is the event name for recording, with AddEvent, an
	// error raised mid-span, mirrored from OpenTelemetry's semantic
	// convention of the same name so downstream UIs recognize it.
	EventException = "exception"
)

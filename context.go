// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"encoding/binary"
	"fmt"
)

// SpanContext is the cross-process handle: a (TraceID, SpanID) pair
// transmitted opaquely by the application (§3, §6). The core exposes only
// construction and byte (de)serialization helpers; it does not speak
// HTTP/gRPC itself.
type SpanContext struct {
	TraceID TraceID
	SpanID  SpanID
}

// SpanContextByteLen is the encoded length produced by Encode.
const SpanContextByteLen = 24

// RandomSpanContext mints a SpanContext suitable for starting a brand new
// trace: a fresh TraceID paired with the zero SpanID, matching a root's
// parent = 0 convention (§3) until the root itself mints its own span id.
func RandomSpanContext() SpanContext {
	return SpanContext{TraceID: NewTraceID(), SpanID: noParentSpanID}
}

// Encode serializes sc as 24 bytes: 8 high + 8 low trace-id bytes, then 8
// span-id bytes, all big-endian (§6: "byte tuples").
func (sc SpanContext) Encode() [SpanContextByteLen]byte {
	var buf [SpanContextByteLen]byte
	binary.BigEndian.PutUint64(buf[0:8], sc.TraceID.High)
	binary.BigEndian.PutUint64(buf[8:16], sc.TraceID.Low)
	binary.BigEndian.PutUint64(buf[16:24], uint64(sc.SpanID))
	return buf
}

// DecodeSpanContext is the inverse of Encode.
func DecodeSpanContext(buf []byte) (SpanContext, error) {
	if len(buf) != SpanContextByteLen {
		return SpanContext{}, fmt.Errorf("minitrace: span context must be %d bytes, got %d", SpanContextByteLen, len(buf))
	}
	return SpanContext{
		TraceID: TraceID{
			High: binary.BigEndian.Uint64(buf[0:8]),
			Low:  binary.BigEndian.Uint64(buf[8:16]),
		},
		SpanID: SpanID(binary.BigEndian.Uint64(buf[16:24])),
	}, nil
}

// String renders sc as "<trace-id-hex>:<span-id-hex>", convenient for log
// lines and debug printing.
func (sc SpanContext) String() string {
	return fmt.Sprintf("%016x%016x:%016x", sc.TraceID.High, sc.TraceID.Low, uint64(sc.SpanID))
}

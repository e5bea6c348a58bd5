// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"github.com/tinylib/msgp/msgp"
)

// This file hand-writes the msgp.Marshaler/msgp.Unmarshaler pair that
// `go:generate msgp` would otherwise produce, grounded on the array-of-
// fields encoding dd-trace-go's ddtrace/tracer/span.go uses for its own
// msgp-tagged span type. A Reporter that wants to speak an agent-style
// msgpack wire format can reuse this instead of writing its own codec
// (SPEC_FULL §6.1); the core ships the codec, not a transport.

const spanRecordArrayLen = 9

func appendProperties(b []byte, props []Property) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(props)))
	for _, p := range props {
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendString(b, p.Key)
		b = msgp.AppendString(b, p.Value)
	}
	return b
}

func readProperties(bts []byte) ([]Property, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}
	if n == 0 {
		return nil, bts, nil
	}
	props := make([]Property, n)
	for i := uint32(0); i < n; i++ {
		if _, bts, err = msgp.ReadArrayHeaderBytes(bts); err != nil {
			return nil, bts, err
		}
		if props[i].Key, bts, err = msgp.ReadStringBytes(bts); err != nil {
			return nil, bts, err
		}
		if props[i].Value, bts, err = msgp.ReadStringBytes(bts); err != nil {
			return nil, bts, err
		}
	}
	return props, bts, nil
}

func appendEvents(b []byte, events []Event) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(events)))
	for _, e := range events {
		b = msgp.AppendArrayHeader(b, 3)
		b = msgp.AppendString(b, e.Name)
		b = msgp.AppendUint64(b, e.TimestampUnixNano)
		b = appendProperties(b, e.Properties)
	}
	return b
}

func readEvents(bts []byte) ([]Event, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}
	if n == 0 {
		return nil, bts, nil
	}
	events := make([]Event, n)
	for i := uint32(0); i < n; i++ {
		if _, bts, err = msgp.ReadArrayHeaderBytes(bts); err != nil {
			return nil, bts, err
		}
		if events[i].Name, bts, err = msgp.ReadStringBytes(bts); err != nil {
			return nil, bts, err
		}
		if events[i].TimestampUnixNano, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
			return nil, bts, err
		}
		if events[i].Properties, bts, err = readProperties(bts); err != nil {
			return nil, bts, err
		}
	}
	return events, bts, nil
}

// MarshalMsg appends the msgpack encoding of rec to b.
func (rec *SpanRecord) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, spanRecordArrayLen)
	b = msgp.AppendUint64(b, rec.TraceID.High)
	b = msgp.AppendUint64(b, rec.TraceID.Low)
	b = msgp.AppendUint64(b, uint64(rec.SpanID))
	b = msgp.AppendUint64(b, uint64(rec.ParentID))
	b = msgp.AppendUint64(b, rec.BeginUnixNano)
	b = msgp.AppendUint64(b, rec.DurationNano)
	b = msgp.AppendString(b, rec.Name)
	b = appendProperties(b, rec.Properties)
	b = appendEvents(b, rec.Events)
	return b, nil
}

// UnmarshalMsg sets rec from the msgpack encoding at the head of bts and
// returns the remainder.
func (rec *SpanRecord) UnmarshalMsg(bts []byte) ([]byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	if n != spanRecordArrayLen {
		return bts, msgp.ArrayError{Wanted: spanRecordArrayLen, Got: n}
	}
	if rec.TraceID.High, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	if rec.TraceID.Low, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	var spanID, parentID uint64
	if spanID, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	rec.SpanID = SpanID(spanID)
	if parentID, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	rec.ParentID = SpanID(parentID)
	if rec.BeginUnixNano, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	if rec.DurationNano, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	if rec.Name, bts, err = msgp.ReadStringBytes(bts); err != nil {
		return bts, err
	}
	if rec.Properties, bts, err = readProperties(bts); err != nil {
		return bts, err
	}
	if rec.Events, bts, err = readEvents(bts); err != nil {
		return bts, err
	}
	return bts, nil
}

// Msgsize returns a conservative upper bound on the encoded size of rec,
// matching the convention of generated msgp code.
func (rec *SpanRecord) Msgsize() int {
	size := msgp.ArrayHeaderSize + 6*msgp.Uint64Size + msgp.StringPrefixSize + len(rec.Name)
	size += msgp.ArrayHeaderSize
	for _, p := range rec.Properties {
		size += msgp.ArrayHeaderSize + msgp.StringPrefixSize + len(p.Key) + msgp.StringPrefixSize + len(p.Value)
	}
	size += msgp.ArrayHeaderSize
	for _, e := range rec.Events {
		size += msgp.ArrayHeaderSize + msgp.StringPrefixSize + len(e.Name) + msgp.Uint64Size
		for _, p := range e.Properties {
			size += msgp.ArrayHeaderSize + msgp.StringPrefixSize + len(p.Key) + msgp.StringPrefixSize + len(p.Value)
		}
	}
	return size
}

// SpanRecordBatch is the wire-level container the Dispatcher hands a
// msgpack-speaking Reporter: a plain slice of SpanRecord, encoded as a
// msgpack array.
type SpanRecordBatch []SpanRecord

// MarshalMsg appends the msgpack encoding of the batch to b.
func (batch SpanRecordBatch) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, uint32(len(batch)))
	var err error
	for i := range batch {
		b, err = batch[i].MarshalMsg(b)
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

// UnmarshalMsg decodes a SpanRecordBatch from the head of bts.
func (batch *SpanRecordBatch) UnmarshalMsg(bts []byte) ([]byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	out := make(SpanRecordBatch, n)
	for i := uint32(0); i < n; i++ {
		bts, err = out[i].UnmarshalMsg(bts)
		if err != nil {
			return bts, err
		}
	}
	*batch = out
	return bts, nil
}

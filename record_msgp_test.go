// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanRecordMsgpRoundTrip(t *testing.T) {
	rec := SpanRecord{
		TraceID:       TraceID{High: 1, Low: 2},
		SpanID:        3,
		ParentID:      4,
		BeginUnixNano: 100,
		DurationNano:  50,
		Name:          "R",
		Properties:    []Property{{Key: "k", Value: "v"}},
		Events:        []Event{{Name: "ev", TimestampUnixNano: 120, Properties: []Property{{Key: "a", Value: "b"}}}},
	}

	b, err := rec.MarshalMsg(nil)
	require.NoError(t, err)

	var got SpanRecord
	rest, err := got.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, rec, got)
}

func TestSpanRecordBatchMsgpRoundTrip(t *testing.T) {
	batch := SpanRecordBatch{
		{Name: "A", TraceID: TraceID{High: 1}},
		{Name: "B", TraceID: TraceID{High: 1}},
	}

	b, err := batch.MarshalMsg(nil)
	require.NoError(t, err)

	var got SpanRecordBatch
	rest, err := got.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, batch, got)
}

func TestSpanRecordMsgsizeIsPositive(t *testing.T) {
	rec := SpanRecord{Name: "R"}
	assert.Greater(t, rec.Msgsize(), 0)
}

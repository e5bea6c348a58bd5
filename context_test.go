// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanContextRoundTrip(t *testing.T) {
	sc := SpanContext{TraceID: TraceID{High: 0x01, Low: 0x02}, SpanID: 0x03}
	buf := sc.Encode()
	got, err := DecodeSpanContext(buf[:])
	require.NoError(t, err)
	assert.Equal(t, sc, got)
}

func TestSpanContextRandomRoundTrip(t *testing.T) {
	sc := RandomSpanContext()
	buf := sc.Encode()
	got, err := DecodeSpanContext(buf[:])
	require.NoError(t, err)
	assert.Equal(t, sc, got)
	assert.False(t, sc.TraceID.IsZero())
}

func TestDecodeSpanContextWrongLength(t *testing.T) {
	_, err := DecodeSpanContext([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSpanContextStringFormat(t *testing.T) {
	sc := SpanContext{TraceID: TraceID{High: 0x01, Low: 0x02}, SpanID: 0x03}
	assert.Equal(t, "00000000000000010000000000000002:0000000000000003", sc.String())
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatsdClientDialsWithoutError(t *testing.T) {
	client, err := NewStatsdClient("127.0.0.1:18125")
	require.NoError(t, err)
	assert.NoError(t, client.Count("spans_dropped", 1, nil, 1))
	assert.NoError(t, client.Gauge("queue_depth", 1, nil, 1))
	assert.NoError(t, client.Timing("drain_latency", time.Millisecond, nil, 1))
}

func TestStatsdOrNoopPassesThroughRealClient(t *testing.T) {
	client, err := NewStatsdClient("127.0.0.1:18126")
	require.NoError(t, err)
	assert.Same(t, client, statsdOrNoop(client))
}

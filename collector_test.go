// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentQueuePushDrainOrder(t *testing.T) {
	q := newSegmentQueue()
	for i := 0; i < collectorSegmentSize*3+5; i++ {
		s := RawSpan{SpanID: SpanID(i)}
		q.push(segmentItem{span: &s})
	}
	items := q.drain()
	require.Len(t, items, collectorSegmentSize*3+5)
	for i, it := range items {
		require.NotNil(t, it.span)
		assert.Equal(t, SpanID(i), it.span.SpanID)
	}
}

func TestSegmentQueueConcurrentProducers(t *testing.T) {
	q := newSegmentQueue()
	const producers = 16
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s := RawSpan{SpanID: SpanID(p*perProducer + i)}
				q.push(segmentItem{span: &s})
			}
		}(p)
	}
	wg.Wait()

	items := q.drain()
	assert.Len(t, items, producers*perProducer)
}

func TestCollectorPushSpanTruncatesOverCap(t *testing.T) {
	c := newCollector(NewTraceID(), Config{MaxSpansPerTrace: 2})
	c.pushSpan(RawSpan{Name: "a"})
	c.pushSpan(RawSpan{Name: "b"})
	c.pushSpan(RawSpan{Name: "c"})

	stats := c.stats()
	assert.Equal(t, uint64(2), stats.SpansReceived)
	assert.Equal(t, uint64(1), stats.SpansDropped)
	assert.True(t, stats.Truncated)
}

func TestCollectorPushBatchPartialTruncation(t *testing.T) {
	c := newCollector(NewTraceID(), Config{MaxSpansPerTrace: 2})
	c.pushBatch(LocalSpans{Spans: []RawSpan{{Name: "x"}, {Name: "y"}, {Name: "z"}}})

	stats := c.stats()
	assert.Equal(t, uint64(2), stats.SpansReceived)
	assert.Equal(t, uint64(1), stats.SpansDropped)
	assert.True(t, stats.Truncated)

	items := c.queue.drain()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].batch)
	assert.Len(t, items[0].batch.Spans, 2)
}

func TestCollectorSealRejectsFurtherPushes(t *testing.T) {
	c := newCollector(NewTraceID(), Config{})
	c.seal()
	c.pushSpan(RawSpan{Name: "late"})

	items := c.queue.drain()
	assert.Empty(t, items)
}

func TestCollectorRefCounting(t *testing.T) {
	c := newCollector(NewTraceID(), Config{})
	c.incRef()
	assert.False(t, c.decRef())
	assert.True(t, c.decRef())
}

func TestCollectorHandleStatsOnZeroValue(t *testing.T) {
	var h CollectorHandle
	assert.Equal(t, CollectorStats{}, h.Stats())
	assert.True(t, h.TraceID().IsZero())
}

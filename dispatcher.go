// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/minitrace-go/minitrace/internal/log"
)

// sealedQueueCap bounds the Dispatcher's completion channel (§4.6: "The
// Dispatcher MUST never block application threads: ... if the channel is
// full, the enqueuer drops the trace and increments a global
// dropped_traces counter").
const sealedQueueCap = 4096

// dispatcher is the single background worker of §4.6, grounded on
// dd-trace-go's tracer.worker/flush loop (ddtrace/tracer/tracer.go): a
// buffered channel fed by a non-blocking send, drained on a ticker, with
// errgroup supervising the worker goroutine for a clean shutdown path
// (SPEC_FULL §5.1).
type dispatcher struct {
	reporter Reporter
	cfg      Config
	statsd   StatsdClient
	limiter  *rate.Limiter

	sealedCh chan *Collector
	flushCh  chan chan struct{}

	g      *errgroup.Group
	cancel context.CancelFunc
}

func newDispatcher(reporter Reporter, cfg Config) *dispatcher {
	var limiter *rate.Limiter
	if cfg.MaxTracesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxTracesPerSecond), int(cfg.MaxTracesPerSecond)+1)
	}
	d := &dispatcher{
		reporter: reporter,
		cfg:      cfg,
		statsd:   statsdOrNoop(cfg.StatsdClient),
		limiter:  limiter,
		sealedCh: make(chan *Collector, sealedQueueCap),
		flushCh:  make(chan chan struct{}),
	}
	return d
}

func (d *dispatcher) start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	d.g = g
	g.Go(func() error {
		d.run(ctx)
		return nil
	})
}

func (d *dispatcher) stop() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.g != nil {
		_ = d.g.Wait()
	}
}

// enqueueSealed is called by SpanHandle.Finish when a Collector's
// refcount reaches zero. It never blocks application goroutines.
func (d *dispatcher) enqueueSealed(c *Collector) {
	c.seal()
	select {
	case d.sealedCh <- c:
	default:
		countDroppedTrace(DropQueueFull)
		_ = d.statsd.Count("minitrace.traces_dropped", 1, nil, 1)
	}
}

func (d *dispatcher) run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.drainAndReport(true)
			return
		case <-ticker.C:
			d.drainAndReport(false)
		case reply := <-d.flushCh:
			d.drainAndReport(true)
			close(reply)
		}
	}
}

// drainAndReport implements §4.6 steps 1-3: flatten every currently
// sealed Collector into SpanRecords, apply tail sampling, then coalesce
// into Reporter.Report calls respecting batch_report_max_spans.
func (d *dispatcher) drainAndReport(final bool) {
	anchor := CurrentAnchor()

	var batch []SpanRecord
	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		d.reporter.Report(batch)
		batch = nil
	}

	drain := true
	for drain {
		select {
		case c := <-d.sealedCh:
			if !d.admit(c) {
				continue
			}
			records := flatten(c, anchor)
			for _, rec := range records {
				batch = append(batch, rec)
				if d.cfg.BatchReportMaxSpans > 0 && len(batch) >= d.cfg.BatchReportMaxSpans {
					flushBatch()
				}
			}
		default:
			drain = false
		}
	}
	flushBatch()
	if final {
		d.reporter.Flush()
	}
}

// admit applies the tail-sampling rate limiter (SPEC_FULL §5.2, §10.2):
// the whole trace is kept or discarded atomically, independent of
// per-trace truncation.
func (d *dispatcher) admit(c *Collector) bool {
	if d.limiter == nil {
		return true
	}
	if d.limiter.Allow() {
		return true
	}
	countDroppedTrace(DropQueueFull)
	return false
}

// flatten converts a sealed Collector's queued items into SpanRecords,
// collecting them in producer-arrival order (§4.6 step 1) and then
// stable-sorting them by begin time.
func flatten(c *Collector, anchor Anchor) []SpanRecord {
	items := c.queue.drain()
	records := make([]SpanRecord, 0, len(items))
	for _, item := range items {
		switch {
		case item.span != nil:
			rec, clamped := toSpanRecord(c.traceID, anchor, *item.span)
			if clamped {
				log.Debug("span %d reported with end<begin, clamped to zero duration", rec.SpanID)
			}
			records = append(records, rec)
		case item.batch != nil:
			for _, raw := range item.batch.Spans {
				rec, clamped := toSpanRecord(c.traceID, anchor, raw)
				if clamped {
					log.Debug("span %d reported with end<begin, clamped to zero duration", rec.SpanID)
				}
				records = append(records, rec)
			}
		}
	}
	// Stable-sort by begin time so consumers that don't reorder
	// themselves still see a sane timeline; per-thread arrival order is
	// already preserved by the segment queue (§5: "overall order between
	// threads is unspecified").
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BeginUnixNano < records[j].BeginUnixNano
	})
	return records
}

var (
	dispatcherMu sync.RWMutex
	activeDisp   *dispatcher
)

// dispatchSealed hands a Collector whose refcount reached zero to the
// active Dispatcher, or drops the trace if none is registered yet (§7
// DropReporterUninitialized).
func dispatchSealed(c *Collector) {
	dispatcherMu.RLock()
	d := activeDisp
	dispatcherMu.RUnlock()
	if d == nil {
		countDroppedTrace(DropReporterUninitialized)
		return
	}
	d.enqueueSealed(c)
}

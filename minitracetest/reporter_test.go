// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitracetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitrace-go/minitrace"
)

func TestRecordingReporterCapturesBatches(t *testing.T) {
	r := &RecordingReporter{}
	r.Report([]minitrace.SpanRecord{{Name: "A"}, {Name: "B"}})
	r.Report([]minitrace.SpanRecord{{Name: "C"}})
	r.Flush()

	require.Len(t, r.Records(), 3)
	assert.Len(t, r.Batches(), 2)
	assert.Equal(t, 1, r.Flushes())
	assert.Len(t, r.ByName("A"), 1)
}

func TestRecordingReporterReset(t *testing.T) {
	r := &RecordingReporter{}
	r.Report([]minitrace.SpanRecord{{Name: "A"}})
	r.Flush()
	r.Reset()

	assert.Empty(t, r.Records())
	assert.Equal(t, 0, r.Flushes())
}

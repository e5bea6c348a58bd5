// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitracetest

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks fails t if any goroutine started during the test (such as
// a Dispatcher that was never stopped) is still running when it returns.
// Call it with t.Cleanup so it runs after the test's own teardown.
func VerifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t,
		// The runtime's own background goroutines (GC assist workers,
		// finalizer goroutine) are not something a test can or should
		// tear down.
		goleak.IgnoreTopFunction("runtime.gopark"),
	)
}

// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package minitrace

// Task is the smallest interface a cooperative scheduler needs to drive
// resumption/suspension without depending on any particular async
// runtime (§9 design note, named concretely per SPEC_FULL §10.4). Poll
// resumes the task and reports whether it has completed.
type Task interface {
	Poll() (done bool)
}

// TaskWrapper adapts a user Task so that each resumption opens (or
// re-enters) a local-parent scope and each suspension closes it, matching
// §9's "wrapper over a user-provided unit of work that, on each
// resumption, installs a local parent guard and, on suspension, removes
// it." Each Poll closes its guard before returning, so a task abandoned
// without completing leaves no guard installed. Its child span stays open
// until something calls Finish on it: TaskWrapper has no teardown of its
// own and records no incomplete marker.
type TaskWrapper struct {
	parent *SpanHandle
	name   string
	task   Task

	span  *SpanHandle
	guard *LocalParentGuard
}

// WrapTask wraps task so every resumption is attributed to a child span
// of parent named name (§10.4).
func WrapTask(parent *SpanHandle, name string, task Task) *TaskWrapper {
	return &TaskWrapper{parent: parent, name: name, task: task}
}

// Poll implements Task: it opens the span and local-parent scope on
// first entry (or re-enters it on subsequent resumptions), runs one step
// of the inner task, then closes the scope before returning — so no span
// stays open across a suspension point, matching §5's "no core operation
// may suspend" for everything except the inner task's own code.
func (w *TaskWrapper) Poll() (done bool) {
	w.onEnter()
	done = w.task.Poll()
	w.onLeave(done)
	return done
}

func (w *TaskWrapper) onEnter() {
	if w.span == nil {
		w.span = EnterWithParent(w.name, w.parent)
	}
	w.guard = w.span.SetLocalParent()
}

func (w *TaskWrapper) onLeave(done bool) {
	w.guard.Close()
	w.guard = nil
	if done {
		w.span.Finish()
		w.span = nil
	}
}

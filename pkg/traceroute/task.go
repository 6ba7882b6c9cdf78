// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

// Task is the handle of a run started in the background.
type Task struct {
	done chan struct{}
	res  Result
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// finish stores the result and releases all waiters. It is called exactly once.
func (t *Task) finish(res Result) {
	t.res = res
	close(t.done)
}

// Done returns a channel that is closed when the run has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run has finished and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.res
}

// Result returns the result and true if the run has finished.
func (t *Task) Result() (Result, bool) {
	select {
	case <-t.done:
		return t.res, true
	default:
		return Result{}, false
	}
}

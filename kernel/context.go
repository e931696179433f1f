package kernel

import "runtime"

// Context is the saved state of one execution flow.
//
// A flow that is switched away from parks on its context's rendezvous
// channel; whoever later switches back into that context wakes it at
// exactly the point where it parked. A context built with an entry
// function has no flow yet: the first switch into it starts the flow
// at the entry function.
type Context struct {
	resume chan struct{}
	entry  func()
}

// NewContext creates an empty context with no pending flow.
func NewContext() *Context {
	return &Context{resume: make(chan struct{})}
}

// NewEntryContext creates a context whose first switch-in starts fn
// on a fresh flow.
func NewEntryContext(fn func()) *Context {
	c := NewContext()
	c.entry = fn
	return c
}

// Switch transfers control from the calling flow to the flow recorded
// in load, parking the caller in save.
//
// Switch returns only when some other flow later switches back into
// save; that may happen on a different stack and arbitrarily far in
// the future. Callers must hold no Cell across the call: the flow
// switched into may immediately try to acquire the same cell.
func Switch(save, load *Context) {
	load.wake()
	save.park()
}

// ExitTo transfers control to load and terminates the calling flow.
// It never returns. Used when a task relinquishes the CPU permanently.
func ExitTo(load *Context) {
	load.wake()
	runtime.Goexit()
}

func (c *Context) wake() {
	if fn := c.entry; fn != nil {
		c.entry = nil
		go fn()
		return
	}
	c.resume <- struct{}{}
}

func (c *Context) park() {
	<-c.resume
}

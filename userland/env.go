// Package userland holds the built-in demo programs. Each program runs
// as a task and talks to the kernel exclusively through the syscall
// dispatch function it is handed at spawn time.
package userland

import (
	"github.com/hashicorp/go-hclog"

	"nucleus/mm"
	"nucleus/sys"
)

// Env is a program's view of the machine: the trap entry point, its own
// address-space token for reading back what the kernel wrote, and a
// logger standing in for a console.
type Env struct {
	Dispatch func(id uint, a0, a1, a2 uintptr) int
	Token    mm.Token
	Mem      *mm.Registry
	Log      hclog.Logger
}

// Exit terminates the calling task. Never returns.
func (e *Env) Exit(code int32) {
	e.Dispatch(sys.SysExit, uintptr(code), 0, 0)
}

// Yield gives up the CPU until the task is scheduled again.
func (e *Env) Yield() int {
	return e.Dispatch(sys.SysYield, 0, 0, 0)
}

// GetTime asks the kernel to write a TimeVal at va.
func (e *Env) GetTime(va uintptr) int {
	return e.Dispatch(sys.SysGetTime, va, 0, 0)
}

// TaskInfo asks the kernel to write a TaskInfo record at va.
func (e *Env) TaskInfo(va uintptr) int {
	return e.Dispatch(sys.SysTaskInfo, va, 0, 0)
}

// Mmap maps [va, va+length) with the given prot bits.
func (e *Env) Mmap(va, length uintptr, prot uint) int {
	return e.Dispatch(sys.SysMmap, va, length, uintptr(prot))
}

// Munmap unmaps [va, va+length).
func (e *Env) Munmap(va, length uintptr) int {
	return e.Dispatch(sys.SysMunmap, va, length, 0)
}

// Sbrk moves the program break by delta bytes and returns the old
// break, or -1.
func (e *Env) Sbrk(delta int) int {
	return e.Dispatch(sys.SysSbrk, uintptr(delta), 0, 0)
}

// ReadBack reads n bytes of the program's own memory at va, through the
// same translation path the kernel writes through.
func (e *Env) ReadBack(va uintptr, n int) ([]byte, bool) {
	buf, ok := e.Mem.Translate(e.Token, va)
	if !ok || len(buf) < n {
		return nil, false
	}
	return buf[:n], true
}

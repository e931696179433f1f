package sys

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"nucleus/hal"
	"nucleus/kernel"
	"nucleus/mm"
)

// syscallFn is one syscall body. Arguments arrive raw from the trap
// path; the body validates and returns the user-visible result.
type syscallFn func(h *Handler, a0, a1, a2 uintptr) int

// Handler services traps for one processor. It owns the syscall table
// and the collaborator handles the bodies need: the processor for task
// state, the registry for address translation, and the timer source.
type Handler struct {
	proc  *kernel.Processor
	mem   *mm.Registry
	clock hal.Clock
	log   hclog.Logger

	table [kernel.MaxSyscallNum]syscallFn
}

// NewHandler creates a trap handler bound to proc.
func NewHandler(proc *kernel.Processor, mem *mm.Registry, clock hal.Clock, log hclog.Logger) *Handler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	h := &Handler{
		proc:  proc,
		mem:   mem,
		clock: clock,
		log:   log.Named("sys"),
	}
	h.table[SysExit] = sysExit
	h.table[SysYield] = sysYield
	h.table[SysGetTime] = sysGetTime
	h.table[SysSbrk] = sysSbrk
	h.table[SysMunmap] = sysMunmap
	h.table[SysMmap] = sysMmap
	h.table[SysTaskInfo] = sysTaskInfo
	return h
}

// Dispatch is the trap entry point: it accounts the syscall against the
// current task, records the arguments in the trap context, and runs the
// body. An out-of-range or unknown id is a contract violation of the
// user ABI and aborts.
func (h *Handler) Dispatch(id uint, a0, a1, a2 uintptr) int {
	if id >= kernel.MaxSyscallNum {
		panic(fmt.Sprintf("sys: syscall id %d out of range", id))
	}
	h.proc.AddSyscallTime(id)

	tc := h.proc.CurrentTrapCx()
	tc.R0, tc.R1, tc.R2 = a0, a1, a2
	tc.Syscall = uint32(id)

	fn := h.table[id]
	if fn == nil {
		panic(fmt.Sprintf("sys: unsupported syscall %d", id))
	}
	h.log.Trace("syscall", "id", id, "a0", a0, "a1", a1, "a2", a2)
	ret := fn(h, a0, a1, a2)
	tc.Ret = ret
	return ret
}

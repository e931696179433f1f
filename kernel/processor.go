package kernel

import (
	"context"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"nucleus/hal"
	"nucleus/mm"
)

// Processor tracks which task, if any, currently owns the CPU, and
// carries the scheduler's own idle context. One instance per core;
// this design covers the single-core case.
type Processor struct {
	cell    Cell
	current *Task
	idleCx  *Context

	mgr   *Manager
	clock hal.Clock
	log   hclog.Logger
}

// NewProcessor creates a processor with an empty current slot.
func NewProcessor(mgr *Manager, clock hal.Clock, log hclog.Logger) *Processor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Processor{
		idleCx: NewContext(),
		mgr:    mgr,
		clock:  clock,
		log:    log.Named("processor"),
	}
}

// RunTasks is the dispatch loop. It runs on the scheduler's own flow:
// fetch the next runnable task, mark it running, stamp its first
// dispatch time, and switch into it. Control comes back here whenever
// a task relinquishes the CPU.
//
// An empty ready queue is not an error; the loop reports it and keeps
// polling. RunTasks returns once ctx is done and no task is runnable.
func (p *Processor) RunTasks(ctx context.Context) {
	idleLogged := false
	for {
		p.cell.Acquire()
		task, ok := p.mgr.Fetch()
		if !ok {
			p.cell.Release()
			if ctx.Err() != nil {
				return
			}
			if !idleLogged {
				p.log.Warn("no runnable task, polling")
				idleLogged = true
			}
			runtime.Gosched()
			continue
		}
		idleLogged = false

		idle := p.idleCx
		task.cell.Acquire()
		taskCx := task.inner.taskCx
		task.inner.status = StatusRunning
		if task.inner.startTime == 0 {
			task.inner.startTime = p.clock.NowMicros()
		}
		task.cell.Release()

		p.current = task
		// The processor cell must be free before the switch: the task
		// flow acquires it on its very next syscall.
		p.cell.Release()
		Switch(idle, taskCx)
	}
}

// Schedule hands the CPU back to the dispatch loop, parking the calling
// task flow in outgoing. It returns when the task is next dispatched.
func (p *Processor) Schedule(outgoing *Context) {
	p.cell.Acquire()
	idle := p.idleCx
	p.cell.Release()
	Switch(outgoing, idle)
}

// SuspendCurrentAndRunNext cooperatively relinquishes the CPU: the
// current task goes back to the ready queue and the dispatch loop picks
// the next one. Returns when this task runs again.
func (p *Processor) SuspendCurrentAndRunNext() {
	task := p.TakeCurrent()
	if task == nil {
		panic("kernel: suspend with no current task")
	}
	task.cell.Acquire()
	taskCx := task.inner.taskCx
	task.inner.status = StatusReady
	task.cell.Release()
	p.mgr.Add(task)
	p.Schedule(taskCx)
}

// ExitCurrentAndRunNext terminates the current task and switches to the
// dispatch loop. It never returns: the calling flow ends here.
func (p *Processor) ExitCurrentAndRunNext(code int32) {
	task := p.TakeCurrent()
	if task == nil {
		panic("kernel: exit with no current task")
	}
	task.cell.Acquire()
	task.inner.status = StatusExited
	task.inner.exitCode = code
	task.cell.Release()
	task.space.Release()

	p.cell.Acquire()
	idle := p.idleCx
	p.cell.Release()
	ExitTo(idle)
}

// TakeCurrent removes and returns the current task, leaving the slot
// empty. Returns nil when no task is current.
func (p *Processor) TakeCurrent() *Task {
	p.cell.Acquire()
	defer p.cell.Release()
	t := p.current
	p.current = nil
	return t
}

// Current returns the current task without removing it, or nil.
func (p *Processor) Current() *Task {
	p.cell.Acquire()
	defer p.cell.Release()
	return p.current
}

// mustCurrent returns the current task or aborts: the trap path
// guarantees a current task exists while a syscall is serviced.
func (p *Processor) mustCurrent(op string) *Task {
	if t := p.Current(); t != nil {
		return t
	}
	panic("kernel: " + op + " with no current task")
}

// MmapCurrent maps memory in the current task's address space.
// Returns -1 when no task is current.
func (p *Processor) MmapCurrent(start, length uintptr, prot uint) int {
	t := p.Current()
	if t == nil {
		return -1
	}
	return t.Mmap(start, length, prot)
}

// MunmapCurrent unmaps memory in the current task's address space.
// Returns -1 when no task is current.
func (p *Processor) MunmapCurrent(start, length uintptr) int {
	t := p.Current()
	if t == nil {
		return -1
	}
	return t.Munmap(start, length)
}

// ChangeProgramBrkCurrent moves the current task's program break.
func (p *Processor) ChangeProgramBrkCurrent(delta int) (uintptr, bool) {
	return p.mustCurrent("sbrk").ChangeProgramBrk(delta)
}

// CurrentStatus returns the current task's scheduling state.
func (p *Processor) CurrentStatus() TaskStatus {
	return p.mustCurrent("current_status").Status()
}

// SyscallTimes returns a copy of the current task's syscall counters.
func (p *Processor) SyscallTimes() [MaxSyscallNum]uint32 {
	return p.mustCurrent("syscall_times").SyscallTimes()
}

// AddSyscallTime increments the current task's counter for one syscall
// id. The trap path calls this on every syscall entry, before the
// syscall body runs.
func (p *Processor) AddSyscallTime(id uint) {
	p.mustCurrent("add_syscall_time").addSyscallTime(id)
}

// StartTime returns the current task's first-dispatch timestamp.
func (p *Processor) StartTime() uint64 {
	return p.mustCurrent("start_time").StartTime()
}

// CurrentUserToken returns the current task's address-space handle.
func (p *Processor) CurrentUserToken() mm.Token {
	return p.mustCurrent("current_user_token").UserToken()
}

// CurrentTrapCx returns the current task's trap context.
func (p *Processor) CurrentTrapCx() *TrapContext {
	return p.mustCurrent("current_trap_cx").TrapCx()
}

package kernel

import "nucleus/mm"

// MaxSyscallNum bounds the per-task syscall counter table. Syscall ids
// are indices into that table.
const MaxSyscallNum = 500

// TrapContext is the register snapshot saved on kernel entry. The trap
// path records the syscall id and arguments here before running the
// handler body.
type TrapContext struct {
	R0, R1, R2 uintptr
	Syscall    uint32
	Ret        int
}

// Task is the kernel-owned record of one task (the task control block).
// Its pointer identity is stable for the task's whole lifetime and is
// shared between the processor, the manager, and the trap path.
type Task struct {
	pid   uint64
	name  string
	space *mm.MemorySet

	cell  Cell
	inner taskInner
}

// taskInner is the mutable task state. Guarded by Task.cell.
type taskInner struct {
	status       TaskStatus
	taskCx       *Context
	trapCx       TrapContext
	syscallTimes [MaxSyscallNum]uint32

	// startTime is the timer value at first dispatch, in microseconds.
	// Zero means the task has never been scheduled.
	startTime uint64

	exitCode int32
}

func newTask(pid uint64, name string, space *mm.MemorySet, entry func()) *Task {
	t := &Task{
		pid:   pid,
		name:  name,
		space: space,
	}
	t.inner.status = StatusReady
	t.inner.taskCx = NewEntryContext(entry)
	return t
}

// Pid returns the task id.
func (t *Task) Pid() uint64 { return t.pid }

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// UserToken returns the handle of the task's address space.
func (t *Task) UserToken() mm.Token { return t.space.Token() }

// Status returns the task's scheduling state.
func (t *Task) Status() TaskStatus {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.inner.status
}

// StartTime returns the first-dispatch timestamp in microseconds, or 0
// if the task has never been scheduled.
func (t *Task) StartTime() uint64 {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.inner.startTime
}

// SyscallTimes returns a copy of the per-syscall invocation counters.
func (t *Task) SyscallTimes() [MaxSyscallNum]uint32 {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.inner.syscallTimes
}

func (t *Task) addSyscallTime(id uint) {
	t.cell.Acquire()
	defer t.cell.Release()
	t.inner.syscallTimes[id]++
}

// ExitCode returns the code passed to exit. Meaningful only once the
// task is StatusExited.
func (t *Task) ExitCode() int32 {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.inner.exitCode
}

// TrapCx returns the task's trap context. The trap path mutates it in
// place while the task owns the CPU.
func (t *Task) TrapCx() *TrapContext {
	t.cell.Acquire()
	defer t.cell.Release()
	return &t.inner.trapCx
}

// Mmap maps [start, start+length) in the task's address space.
func (t *Task) Mmap(start, length uintptr, prot uint) int {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.space.Mmap(start, length, prot)
}

// Munmap unmaps [start, start+length) in the task's address space.
func (t *Task) Munmap(start, length uintptr) int {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.space.Munmap(start, length)
}

// ChangeProgramBrk moves the task's program break by delta bytes and
// returns the old break.
func (t *Task) ChangeProgramBrk(delta int) (uintptr, bool) {
	t.cell.Acquire()
	defer t.cell.Release()
	return t.space.ChangeProgramBrk(delta)
}

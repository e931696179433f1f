package kernel

// TaskStatus is the scheduling state of a task.
type TaskStatus uint8

const (
	// StatusUnInit is the zero value: the task is not yet known to the
	// scheduler. Owned by task setup, never observed by the dispatch loop.
	StatusUnInit TaskStatus = iota
	// StatusReady means eligible to run and waiting in the ready queue.
	StatusReady
	// StatusRunning means the task currently owns the CPU.
	StatusRunning
	// StatusExited means the task terminated and never runs again.
	StatusExited
)

func (s TaskStatus) String() string {
	switch s {
	case StatusUnInit:
		return "uninit"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	default:
		return "unknown"
	}
}

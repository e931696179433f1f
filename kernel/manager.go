package kernel

import "nucleus/mm"

// Manager is the ready queue: a FIFO of runnable tasks, plus the
// registry of every task it has ever seen (for inspection tools).
type Manager struct {
	cell    Cell
	ready   []*Task
	all     []*Task
	nextPid uint64
}

// NewManager creates an empty task manager.
func NewManager() *Manager {
	return &Manager{nextPid: 1}
}

// NewTask creates a task, registers it, and queues it as ready.
// The entry function runs on the task's own flow at first dispatch.
func (m *Manager) NewTask(name string, space *mm.MemorySet, entry func()) *Task {
	m.cell.Acquire()
	pid := m.nextPid
	m.nextPid++
	m.cell.Release()

	t := newTask(pid, name, space, entry)

	m.cell.Acquire()
	m.all = append(m.all, t)
	m.ready = append(m.ready, t)
	m.cell.Release()
	return t
}

// Add queues a task at the back of the ready queue.
func (m *Manager) Add(t *Task) {
	m.cell.Acquire()
	m.ready = append(m.ready, t)
	m.cell.Release()
}

// Fetch removes and returns the task at the front of the ready queue.
func (m *Manager) Fetch() (*Task, bool) {
	m.cell.Acquire()
	defer m.cell.Release()
	if len(m.ready) == 0 {
		return nil, false
	}
	t := m.ready[0]
	m.ready[0] = nil
	m.ready = m.ready[1:]
	return t, true
}

// Snapshot returns every task the manager has registered, in creation
// order.
func (m *Manager) Snapshot() []*Task {
	m.cell.Acquire()
	defer m.cell.Release()
	out := make([]*Task, len(m.all))
	copy(out, m.all)
	return out
}

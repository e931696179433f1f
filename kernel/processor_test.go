package kernel

import (
	"context"
	"testing"
	"time"

	"nucleus/hal"
	"nucleus/mm"
)

type fixture struct {
	mgr   *Manager
	proc  *Processor
	clock *hal.Manual
	alloc *mm.FrameAllocator
	reg   *mm.Registry
}

func newFixture(us uint64) *fixture {
	mgr := NewManager()
	clock := hal.NewManual(us)
	return &fixture{
		mgr:   mgr,
		proc:  NewProcessor(mgr, clock, nil),
		clock: clock,
		alloc: mm.NewFrameAllocator(64),
		reg:   mm.NewRegistry(),
	}
}

// spawn queues a task whose body runs on the task's own flow and exits
// when the body returns.
func (f *fixture) spawn(name string, body func(self *Task)) *Task {
	space := mm.NewMemorySet(f.reg, f.alloc, mm.DefaultHeapBase)
	var task *Task
	task = f.mgr.NewTask(name, space, func() {
		body(task)
		f.proc.ExitCurrentAndRunNext(0)
	})
	return task
}

// run drives the dispatch loop until every spawned task has exited.
func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.proc.RunTasks(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		allExited := true
		for _, task := range f.mgr.Snapshot() {
			if task.Status() != StatusExited {
				allExited = false
				break
			}
		}
		if allExited {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("timed out waiting for tasks to exit")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch loop did not stop")
	}
}

func TestStartTimeStampedOnceAtFirstDispatch(t *testing.T) {
	f := newFixture(1000)

	var aFirst, aSecond, bStart uint64
	f.spawn("a", func(*Task) {
		aFirst = f.proc.StartTime()
		f.clock.Set(2000)
		f.proc.SuspendCurrentAndRunNext()
		aSecond = f.proc.StartTime()
	})
	f.spawn("b", func(*Task) {
		bStart = f.proc.StartTime()
	})
	f.run(t)

	if aFirst != 1000 {
		t.Fatalf("expected a's start time 1000, got %d", aFirst)
	}
	if aSecond != 1000 {
		t.Fatalf("expected a's start time unchanged after yield, got %d", aSecond)
	}
	if bStart != 2000 {
		t.Fatalf("expected b dispatched at 2000, got %d", bStart)
	}
}

func TestStartTimeZeroBeforeDispatch(t *testing.T) {
	f := newFixture(500)
	task := f.spawn("late", func(*Task) {})
	if st := task.StartTime(); st != 0 {
		t.Fatalf("expected zero start time before dispatch, got %d", st)
	}
	f.run(t)
	if st := task.StartTime(); st != 500 {
		t.Fatalf("expected start time 500 after dispatch, got %d", st)
	}
}

func TestSingleRunningTask(t *testing.T) {
	f := newFixture(0)

	var other *Task
	self := f.spawn("self", func(me *Task) {
		if cur := f.proc.Current(); cur != me {
			t.Errorf("expected current task to be %q", me.Name())
		}
		if st := f.proc.CurrentStatus(); st != StatusRunning {
			t.Errorf("expected running status, got %s", st)
		}
		if st := other.Status(); st == StatusRunning {
			t.Error("two tasks running at once")
		}
	})
	other = f.spawn("other", func(me *Task) {
		if st := self.Status(); st == StatusRunning {
			t.Error("two tasks running at once")
		}
	})
	f.run(t)

	if cur := f.proc.Current(); cur != nil {
		t.Fatalf("expected empty current slot after drain, got %q", cur.Name())
	}
}

func TestSyscallCountersPerTask(t *testing.T) {
	f := newFixture(0)

	a := f.spawn("a", func(*Task) {
		for i := 0; i < 3; i++ {
			f.proc.AddSyscallTime(124)
		}
	})
	b := f.spawn("b", func(*Task) {
		f.proc.AddSyscallTime(93)
	})
	f.run(t)

	if n := a.SyscallTimes()[124]; n != 3 {
		t.Fatalf("expected 3 invocations for a, got %d", n)
	}
	if n := a.SyscallTimes()[93]; n != 0 {
		t.Fatalf("expected a unaffected by b's syscalls, got %d", n)
	}
	if n := b.SyscallTimes()[93]; n != 1 {
		t.Fatalf("expected 1 invocation for b, got %d", n)
	}
}

func TestExitRecordsCodeAndReleasesSpace(t *testing.T) {
	f := newFixture(0)

	space := mm.NewMemorySet(f.reg, f.alloc, mm.DefaultHeapBase)
	task := f.mgr.NewTask("doomed", space, func() {
		if r := space.Mmap(0x10000, mm.PageSize, uint(mm.PermRead|mm.PermWrite)); r != 0 {
			t.Errorf("mmap failed: %d", r)
		}
		f.proc.ExitCurrentAndRunNext(7)
	})
	f.run(t)

	if task.Status() != StatusExited {
		t.Fatalf("expected exited, got %s", task.Status())
	}
	if code := task.ExitCode(); code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
	if st := f.alloc.Stats(); st.InUse != 0 {
		t.Fatalf("expected frames released on exit, %d still in use", st.InUse)
	}
	if _, ok := f.reg.Translate(space.Token(), 0x10000); ok {
		t.Fatal("expected translation to fail after exit")
	}
}

func TestTakeCurrentLeavesSlotEmpty(t *testing.T) {
	f := newFixture(0)
	f.spawn("a", func(me *Task) {
		taken := f.proc.TakeCurrent()
		if taken != me {
			t.Error("TakeCurrent returned a different task")
		}
		if f.proc.Current() != nil {
			t.Error("expected empty slot after TakeCurrent")
		}
		// Put it back so the exit path finds a current task.
		f.proc.cell.Acquire()
		f.proc.current = taken
		f.proc.cell.Release()
	})
	f.run(t)
}

func TestAccessorsPanicWithNoCurrentTask(t *testing.T) {
	f := newFixture(0)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic with no current task")
		}
	}()
	f.proc.CurrentStatus()
}

func TestMapDelegatesReturnMinusOneWithNoCurrentTask(t *testing.T) {
	f := newFixture(0)
	if r := f.proc.MmapCurrent(0, mm.PageSize, 0x3); r != -1 {
		t.Fatalf("expected -1 from mmap with no current task, got %d", r)
	}
	if r := f.proc.MunmapCurrent(0, mm.PageSize); r != -1 {
		t.Fatalf("expected -1 from munmap with no current task, got %d", r)
	}
}

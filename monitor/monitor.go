// Package monitor implements the interactive kernel monitor: a small
// line-oriented console over the scheduler and allocator state.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"
	"github.com/inhies/go-bytesize"

	"nucleus/hal"
	"nucleus/kernel"
	"nucleus/mm"
)

// Monitor reads commands from one stream and reports on kernel state.
type Monitor struct {
	mgr   *kernel.Manager
	alloc *mm.FrameAllocator
	clock hal.Clock
	log   hclog.Logger

	in  io.Reader
	out io.Writer
}

// New creates a monitor over the given manager and allocator.
func New(mgr *kernel.Manager, alloc *mm.FrameAllocator, clock hal.Clock, in io.Reader, out io.Writer, log hclog.Logger) *Monitor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Monitor{
		mgr:   mgr,
		alloc: alloc,
		clock: clock,
		log:   log.Named("monitor"),
		in:    in,
		out:   out,
	}
}

// Run serves commands until the input ends, the exit command arrives,
// or ctx is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(m.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	m.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			quit, err := m.exec(line)
			if err != nil {
				fmt.Fprintf(m.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			m.prompt()
		}
	}
}

func (m *Monitor) prompt() {
	fmt.Fprint(m.out, "nucleus> ")
}

// Exec runs a single command line. It returns quit=true for the exit
// command.
func (m *Monitor) Exec(line string) (quit bool, err error) {
	return m.exec(line)
}

func (m *Monitor) exec(line string) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "ps":
		m.cmdPs()
	case "info":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: info <pid>")
		}
		pid, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return false, fmt.Errorf("bad pid %q", args[1])
		}
		return false, m.cmdInfo(pid)
	case "mem":
		m.cmdMem()
	case "uptime":
		m.cmdUptime()
	case "help":
		m.cmdHelp()
	case "exit", "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return false, nil
}

func (m *Monitor) cmdPs() {
	fmt.Fprintf(m.out, "%-5s %-12s %-8s %-12s %s\n", "PID", "NAME", "STATUS", "START(us)", "EXIT")
	for _, t := range m.mgr.Snapshot() {
		status := t.Status()
		exit := "-"
		if status == kernel.StatusExited {
			exit = strconv.FormatInt(int64(t.ExitCode()), 10)
		}
		fmt.Fprintf(m.out, "%-5d %-12s %-8s %-12d %s\n",
			t.Pid(), t.Name(), status, t.StartTime(), exit)
	}
}

func (m *Monitor) cmdInfo(pid uint64) error {
	for _, t := range m.mgr.Snapshot() {
		if t.Pid() != pid {
			continue
		}
		fmt.Fprintf(m.out, "pid %d (%s): %s, first dispatch %dus\n",
			t.Pid(), t.Name(), t.Status(), t.StartTime())
		times := t.SyscallTimes()
		for id, n := range times {
			if n == 0 {
				continue
			}
			fmt.Fprintf(m.out, "  syscall %3d: %d\n", id, n)
		}
		return nil
	}
	return fmt.Errorf("no task with pid %d", pid)
}

func (m *Monitor) cmdMem() {
	st := m.alloc.Stats()
	total := bytesize.New(float64(st.Total * mm.PageSize))
	used := bytesize.New(float64(st.InUse * mm.PageSize))
	fmt.Fprintf(m.out, "frames: %d/%d in use (%s of %s), %d recycled\n",
		st.InUse, st.Total, used, total, st.Recycled)
}

func (m *Monitor) cmdUptime() {
	us := m.clock.NowMicros()
	fmt.Fprintf(m.out, "uptime: %d.%06ds\n", us/1_000_000, us%1_000_000)
}

func (m *Monitor) cmdHelp() {
	fmt.Fprint(m.out, ""+
		"ps            list tasks\n"+
		"info <pid>    per-task syscall counters\n"+
		"mem           frame allocator usage\n"+
		"uptime        kernel timebase\n"+
		"exit          leave the monitor\n")
}

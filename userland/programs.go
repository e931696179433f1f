package userland

import (
	"sort"

	"nucleus/mm"
	"nucleus/sys"
)

// Program is a demo program entry point. A program that returns without
// calling Exit is exited with code 0 by its spawn wrapper.
type Program func(env *Env)

const scratchBase uintptr = 0x0010_0000

var programs = map[string]Program{
	"clock":      Clock,
	"spinner":    Spinner,
	"pagehog":    PageHog,
	"introspect": Introspect,
	"grower":     Grower,
}

// Lookup returns the program registered under name.
func Lookup(name string) (Program, bool) {
	p, ok := programs[name]
	return p, ok
}

// Names lists the registered program names, sorted.
func Names() []string {
	out := make([]string, 0, len(programs))
	for name := range programs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clock maps one page, asks the kernel for the time, and reads the
// record back out of its own memory.
func Clock(env *Env) {
	if env.Mmap(scratchBase, mm.PageSize, uint(mm.PermRead|mm.PermWrite)) != 0 {
		env.Log.Error("clock: mmap failed")
		env.Exit(1)
	}
	if env.GetTime(scratchBase) != 0 {
		env.Log.Error("clock: get_time failed")
		env.Exit(1)
	}
	raw, ok := env.ReadBack(scratchBase, sys.TimeValBytes)
	if !ok {
		env.Log.Error("clock: readback failed")
		env.Exit(1)
	}
	tv, ok := sys.DecodeTimeVal(raw)
	if !ok {
		env.Log.Error("clock: bad time record")
		env.Exit(1)
	}
	env.Log.Info("clock", "sec", tv.Sec, "usec", tv.Usec)
	env.Exit(0)
}

// Spinner yields a handful of times, then exits.
func Spinner(env *Env) {
	for i := 0; i < 5; i++ {
		env.Yield()
	}
	env.Exit(0)
}

// PageHog cycles mappings and checks that remapping a live range is
// refused.
func PageHog(env *Env) {
	const pages = 4
	if env.Mmap(scratchBase, pages*mm.PageSize, uint(mm.PermRead|mm.PermWrite)) != 0 {
		env.Log.Error("pagehog: mmap failed")
		env.Exit(1)
	}
	if env.Mmap(scratchBase, mm.PageSize, uint(mm.PermRead)) != -1 {
		env.Log.Error("pagehog: overlap mmap unexpectedly succeeded")
		env.Exit(1)
	}
	if env.Munmap(scratchBase, pages*mm.PageSize) != 0 {
		env.Log.Error("pagehog: munmap failed")
		env.Exit(1)
	}
	env.Exit(0)
}

// Introspect maps a page and asks the kernel for its own task record.
func Introspect(env *Env) {
	if env.Mmap(scratchBase, mm.PageSize, uint(mm.PermRead|mm.PermWrite)) != 0 {
		env.Log.Error("introspect: mmap failed")
		env.Exit(1)
	}
	env.Yield()
	if env.TaskInfo(scratchBase) != 0 {
		env.Log.Error("introspect: task_info failed")
		env.Exit(1)
	}
	raw, ok := env.ReadBack(scratchBase, sys.TaskInfoBytes)
	if !ok {
		env.Log.Error("introspect: readback failed")
		env.Exit(1)
	}
	info, ok := sys.DecodeTaskInfo(raw)
	if !ok {
		env.Log.Error("introspect: bad task record")
		env.Exit(1)
	}
	env.Log.Info("introspect",
		"status", info.Status,
		"yields", info.SyscallTimes[sys.SysYield],
		"ms", info.TimeMs,
	)
	env.Exit(0)
}

// Grower grows the heap and shrinks it back, checking the break round
// trip.
func Grower(env *Env) {
	before := env.Sbrk(0)
	if before == -1 {
		env.Log.Error("grower: sbrk probe failed")
		env.Exit(1)
	}
	if got := env.Sbrk(mm.PageSize); got != before {
		env.Log.Error("grower: grow returned wrong break", "got", got, "want", before)
		env.Exit(1)
	}
	if got := env.Sbrk(-mm.PageSize); got != before+mm.PageSize {
		env.Log.Error("grower: shrink returned wrong break", "got", got)
		env.Exit(1)
	}
	if got := env.Sbrk(0); got != before {
		env.Log.Error("grower: break not restored", "got", got, "want", before)
		env.Exit(1)
	}
	env.Exit(0)
}

package sys

import "nucleus/mm"

// sysExit terminates the current task. It never returns: the exit path
// switches away from this flow permanently. The trailing panic is the
// internal-consistency guard demanded by that contract.
func sysExit(h *Handler, a0, _, _ uintptr) int {
	h.log.Trace("sys_exit", "code", int32(a0))
	h.proc.ExitCurrentAndRunNext(int32(a0))
	panic("sys: exit returned")
}

// sysYield relinquishes the CPU cooperatively. Returns 0 once the task
// is scheduled again.
func sysYield(h *Handler, _, _, _ uintptr) int {
	h.proc.SuspendCurrentAndRunNext()
	return 0
}

// sysGetTime writes a TimeVal for the current timer reading at the user
// virtual address a0. The second argument (timezone) is ignored.
//
// Only the record's starting address is translated; the write clamps at
// the end of that physical page.
func sysGetTime(h *Handler, a0, _, _ uintptr) int {
	us := h.clock.NowMicros()
	buf, ok := h.mem.Translate(h.proc.CurrentUserToken(), a0)
	if !ok {
		return -1
	}
	copy(buf, EncodeTimeVal(TimeVal{
		Sec:  us / 1_000_000,
		Usec: us % 1_000_000,
	}))
	return 0
}

// sysTaskInfo writes a TaskInfo record for the current task at the user
// virtual address a0. Same single-page translation rule as sysGetTime.
func sysTaskInfo(h *Handler, a0, _, _ uintptr) int {
	buf, ok := h.mem.Translate(h.proc.CurrentUserToken(), a0)
	if !ok {
		return -1
	}
	copy(buf, EncodeTaskInfo(TaskInfo{
		Status:       h.proc.CurrentStatus(),
		SyscallTimes: h.proc.SyscallTimes(),
		TimeMs:       (h.clock.NowMicros() - h.proc.StartTime()) / 1000,
	}))
	return 0
}

// sysMmap maps [a0, a0+a1) with prot a2 in the current address space.
// The start must be page aligned and prot must use only bits 0-2, with
// at least one set; both are rejected before the delegate runs.
func sysMmap(h *Handler, a0, a1, a2 uintptr) int {
	if a0%mm.PageSize != 0 {
		return -1
	}
	prot := uint(a2)
	if prot&^uint(mm.PermMask) != 0 || prot == 0 {
		return -1
	}
	return h.proc.MmapCurrent(a0, a1, prot)
}

// sysMunmap unmaps [a0, a0+a1). The start must be page aligned.
func sysMunmap(h *Handler, a0, a1, _ uintptr) int {
	if a0%mm.PageSize != 0 {
		return -1
	}
	return h.proc.MunmapCurrent(a0, a1)
}

// sysSbrk moves the program break by the signed byte delta in a0 and
// returns the old break, or -1 when the new break is invalid.
func sysSbrk(h *Handler, a0, _, _ uintptr) int {
	delta := int(a0) // two's complement round trip for negative deltas
	old, ok := h.proc.ChangeProgramBrkCurrent(delta)
	if !ok {
		return -1
	}
	return int(old)
}

// Package sys implements the process-control syscall surface: the trap
// dispatch table, the handler bodies, and the wire codecs for the
// records written into user memory.
package sys

// Syscall numbers. Each is an index into the per-task counter table,
// so all values are below kernel.MaxSyscallNum.
const (
	SysExit     = 93
	SysYield    = 124
	SysGetTime  = 169
	SysSbrk     = 214
	SysMunmap   = 215
	SysMmap     = 222
	SysTaskInfo = 410
)

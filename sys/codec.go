package sys

import (
	"encoding/binary"

	"nucleus/kernel"
)

// TimeVal is the record written by get_time.
type TimeVal struct {
	Sec  uint64
	Usec uint64
}

// TimeValBytes is the encoded size of a TimeVal.
const TimeValBytes = 16

// EncodeTimeVal encodes a TimeVal.
//
// Layout (little-endian):
//   - u64: seconds
//   - u64: microseconds within the second
func EncodeTimeVal(tv TimeVal) []byte {
	buf := make([]byte, TimeValBytes)
	binary.LittleEndian.PutUint64(buf[0:8], tv.Sec)
	binary.LittleEndian.PutUint64(buf[8:16], tv.Usec)
	return buf
}

// DecodeTimeVal decodes a TimeVal.
func DecodeTimeVal(b []byte) (TimeVal, bool) {
	if len(b) < TimeValBytes {
		return TimeVal{}, false
	}
	return TimeVal{
		Sec:  binary.LittleEndian.Uint64(b[0:8]),
		Usec: binary.LittleEndian.Uint64(b[8:16]),
	}, true
}

// TaskInfo is the record written by task_info.
type TaskInfo struct {
	Status       kernel.TaskStatus
	SyscallTimes [kernel.MaxSyscallNum]uint32
	// TimeMs is elapsed milliseconds since the task's first dispatch.
	TimeMs uint64
}

// TaskInfoBytes is the encoded size of a TaskInfo.
const TaskInfoBytes = 8 + 4*kernel.MaxSyscallNum + 8

// EncodeTaskInfo encodes a TaskInfo.
//
// Layout (little-endian):
//   - u64: status tag
//   - u32 x MaxSyscallNum: invocation count per syscall id
//   - u64: elapsed milliseconds since first dispatch
func EncodeTaskInfo(ti TaskInfo) []byte {
	buf := make([]byte, TaskInfoBytes)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(ti.Status))
	off := 8
	for i := 0; i < kernel.MaxSyscallNum; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], ti.SyscallTimes[i])
		off += 4
	}
	binary.LittleEndian.PutUint64(buf[off:off+8], ti.TimeMs)
	return buf
}

// DecodeTaskInfo decodes a TaskInfo.
func DecodeTaskInfo(b []byte) (TaskInfo, bool) {
	if len(b) < TaskInfoBytes {
		return TaskInfo{}, false
	}
	var ti TaskInfo
	ti.Status = kernel.TaskStatus(binary.LittleEndian.Uint64(b[0:8]))
	off := 8
	for i := 0; i < kernel.MaxSyscallNum; i++ {
		ti.SyscallTimes[i] = binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
	}
	ti.TimeMs = binary.LittleEndian.Uint64(b[off : off+8])
	return ti, true
}

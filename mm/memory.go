package mm

import "sync"

// DefaultHeapBase is where a task's program-break heap starts unless
// the boot configuration says otherwise.
const DefaultHeapBase uintptr = 0x1000_0000

// MemorySet is one task's address space: a page table plus the
// program-break heap region. All methods are serialized internally.
type MemorySet struct {
	mu sync.Mutex

	reg   *Registry
	token Token

	pt pageTable

	heapBase uintptr
	brk      uintptr
}

// NewMemorySet creates an empty address space, registers it, and
// assigns it a token.
func NewMemorySet(reg *Registry, alloc *FrameAllocator, heapBase uintptr) *MemorySet {
	ms := &MemorySet{
		reg:      reg,
		pt:       newPageTable(alloc),
		heapBase: heapBase,
		brk:      heapBase,
	}
	ms.token = reg.register(ms)
	return ms
}

// Token returns the opaque handle identifying this address space.
func (ms *MemorySet) Token() Token { return ms.token }

// Mmap maps [start, start+length) with the given prot bits. start must
// already be page aligned and prot validated by the caller; Mmap still
// refuses any range overlapping an existing mapping. Returns 0 on
// success, -1 on overlap or frame exhaustion.
func (ms *MemorySet) Mmap(start, length uintptr, prot uint) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	npages := pagesFor(length)
	base := start / PageSize
	for i := uintptr(0); i < npages; i++ {
		if ms.pt.mapped(base + i) {
			return -1
		}
	}
	perm := Perm(prot) & PermMask
	for i := uintptr(0); i < npages; i++ {
		if !ms.pt.mapPage(base+i, perm) {
			for j := uintptr(0); j < i; j++ {
				ms.pt.unmapPage(base + j)
			}
			return -1
		}
	}
	return 0
}

// Munmap unmaps [start, start+length). Every page in the range must be
// mapped; otherwise nothing is unmapped and -1 is returned.
func (ms *MemorySet) Munmap(start, length uintptr) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	npages := pagesFor(length)
	base := start / PageSize
	for i := uintptr(0); i < npages; i++ {
		if !ms.pt.mapped(base + i) {
			return -1
		}
	}
	for i := uintptr(0); i < npages; i++ {
		ms.pt.unmapPage(base + i)
	}
	return 0
}

// ChangeProgramBrk moves the program break by delta bytes, growing or
// shrinking the heap mapping page-wise. Returns the old break, or
// ok=false when the new break would fall below the heap base or frames
// run out.
func (ms *MemorySet) ChangeProgramBrk(delta int) (uintptr, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	old := ms.brk
	var newBrk uintptr
	if delta < 0 {
		d := uintptr(-delta)
		if d > ms.brk-ms.heapBase {
			return 0, false
		}
		newBrk = ms.brk - d
	} else {
		newBrk = ms.brk + uintptr(delta)
	}

	oldPages := pagesFor(ms.brk - ms.heapBase)
	newPages := pagesFor(newBrk - ms.heapBase)
	heapVpn := ms.heapBase / PageSize
	switch {
	case newPages > oldPages:
		for i := oldPages; i < newPages; i++ {
			if !ms.pt.mapPage(heapVpn+i, PermRead|PermWrite) {
				for j := oldPages; j < i; j++ {
					ms.pt.unmapPage(heapVpn + j)
				}
				return 0, false
			}
		}
	case newPages < oldPages:
		for i := newPages; i < oldPages; i++ {
			ms.pt.unmapPage(heapVpn + i)
		}
	}
	ms.brk = newBrk
	return old, true
}

// Release unmaps everything, returns the frames to the allocator, and
// removes the address space from its registry. Called when the owning
// task exits.
func (ms *MemorySet) Release() {
	ms.mu.Lock()
	ms.pt.releaseAll()
	ms.brk = ms.heapBase
	ms.mu.Unlock()
	ms.reg.drop(ms.token)
}

// translate resolves va to the physical bytes backing it, from va's
// offset to the end of its frame. Only the starting page is resolved;
// callers writing records must clamp at the returned length.
func (ms *MemorySet) translate(va uintptr) ([]byte, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	f, ok := ms.pt.frame(va / PageSize)
	if !ok {
		return nil, false
	}
	return f.Bytes()[va%PageSize:], true
}

func pagesFor(n uintptr) uintptr {
	return (n + PageSize - 1) / PageSize
}

package mm

// Perm is a page permission bit set. Only bits 0-2 are meaningful;
// they match the prot bits of the mmap syscall.
type Perm uint8

const (
	PermRead  Perm = 1 << 0
	PermWrite Perm = 1 << 1
	PermExec  Perm = 1 << 2
)

// PermMask covers every valid permission bit.
const PermMask Perm = PermRead | PermWrite | PermExec

type pte struct {
	frame *Frame
	perm  Perm
}

// pageTable maps virtual page numbers to frames. It has no lock of its
// own; the owning MemorySet serializes access.
type pageTable struct {
	alloc   *FrameAllocator
	entries map[uintptr]pte
}

func newPageTable(alloc *FrameAllocator) pageTable {
	return pageTable{alloc: alloc, entries: make(map[uintptr]pte)}
}

func (pt *pageTable) mapped(vpn uintptr) bool {
	_, ok := pt.entries[vpn]
	return ok
}

// mapPage allocates a frame for vpn. Fails on double-map or frame
// exhaustion.
func (pt *pageTable) mapPage(vpn uintptr, perm Perm) bool {
	if pt.mapped(vpn) {
		return false
	}
	f, ok := pt.alloc.Alloc()
	if !ok {
		return false
	}
	pt.entries[vpn] = pte{frame: f, perm: perm}
	return true
}

// unmapPage releases vpn's frame. Fails if vpn is not mapped.
func (pt *pageTable) unmapPage(vpn uintptr) bool {
	e, ok := pt.entries[vpn]
	if !ok {
		return false
	}
	delete(pt.entries, vpn)
	pt.alloc.Free(e.frame)
	return true
}

func (pt *pageTable) frame(vpn uintptr) (*Frame, bool) {
	e, ok := pt.entries[vpn]
	if !ok {
		return nil, false
	}
	return e.frame, true
}

// releaseAll unmaps every page.
func (pt *pageTable) releaseAll() {
	for vpn, e := range pt.entries {
		pt.alloc.Free(e.frame)
		delete(pt.entries, vpn)
	}
}

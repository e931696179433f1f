package mm

import "sync"

// PageSize is the granularity of all mappings, in bytes.
const PageSize = 4096

// Frame is one physical page of backing storage.
type Frame struct {
	data [PageSize]byte
}

// Bytes returns the frame's storage.
func (f *Frame) Bytes() []byte { return f.data[:] }

// FrameAllocator hands out physical frames from a fixed budget,
// recycling freed frames before minting new ones.
type FrameAllocator struct {
	mu       sync.Mutex
	limit    int
	minted   int
	recycled []*Frame
}

// FrameStats is a point-in-time view of allocator usage.
type FrameStats struct {
	Total    int
	InUse    int
	Recycled int
}

// NewFrameAllocator creates an allocator with a budget of total frames.
func NewFrameAllocator(total int) *FrameAllocator {
	return &FrameAllocator{limit: total}
}

// Alloc returns a zeroed frame, or false when the budget is exhausted.
func (a *FrameAllocator) Alloc() (*Frame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.recycled); n > 0 {
		f := a.recycled[n-1]
		a.recycled[n-1] = nil
		a.recycled = a.recycled[:n-1]
		f.data = [PageSize]byte{}
		return f, true
	}
	if a.minted >= a.limit {
		return nil, false
	}
	a.minted++
	return &Frame{}, true
}

// Free returns a frame to the allocator for reuse.
func (a *FrameAllocator) Free(f *Frame) {
	if f == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recycled = append(a.recycled, f)
}

// Stats reports current allocator usage.
func (a *FrameAllocator) Stats() FrameStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FrameStats{
		Total:    a.limit,
		InUse:    a.minted - len(a.recycled),
		Recycled: len(a.recycled),
	}
}

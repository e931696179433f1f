package mm

import "sync"

// Token is an opaque handle identifying one address space.
type Token uintptr

// Registry resolves tokens to address spaces. It is the translation
// interface consumed by syscalls that write into user memory.
type Registry struct {
	mu     sync.Mutex
	next   Token
	spaces map[Token]*MemorySet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{next: 1, spaces: make(map[Token]*MemorySet)}
}

func (r *Registry) register(ms *MemorySet) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok := r.next
	r.next++
	r.spaces[tok] = ms
	return tok
}

func (r *Registry) drop(tok Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spaces, tok)
}

// Translate maps (token, virtual address) to the physical bytes backing
// the address, from its page offset to the end of that page. The second
// result is false for an unknown token or an unmapped address.
//
// Only the starting address is translated: a record written through the
// returned slice must fit in one page, and writers clamp at the page
// boundary.
func (r *Registry) Translate(tok Token, va uintptr) ([]byte, bool) {
	r.mu.Lock()
	ms, ok := r.spaces[tok]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return ms.translate(va)
}

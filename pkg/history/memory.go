package history

import (
	"slices"
	"sync"
)

// MemoryHost is an in-process history stack.
//
// Push truncates forward entries, Go moves the cursor and notifies
// listeners the way a browser fires popstate. Moving past either end of the
// stack is ignored. Listeners run synchronously on the calling goroutine,
// outside the host's lock.
type MemoryHost struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewMemoryHost creates a host with a single entry. An empty initial
// location starts at "#/".
func NewMemoryHost(initial string) *MemoryHost {
	if initial == "" {
		initial = "#/"
	}
	return &MemoryHost{
		entries:   []string{initial},
		listeners: make(map[int]func(string)),
	}
}

// Location implements Host.
func (h *MemoryHost) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push implements Host.
func (h *MemoryHost) Push(location string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], location)
	h.index++
	return nil
}

// Replace implements Host.
func (h *MemoryHost) Replace(location string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = location
	return nil
}

// Go implements Host.
func (h *MemoryHost) Go(delta int) error {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return nil
	}
	h.index = target
	location := h.entries[target]
	h.mu.Unlock()

	h.notify(location)
	return nil
}

// SetLocation simulates the user editing the address: a new entry is pushed
// and listeners are notified.
func (h *MemoryHost) SetLocation(location string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], location)
	h.index++
	h.mu.Unlock()

	h.notify(location)
}

// Listen implements Host.
func (h *MemoryHost) Listen(fn func(location string)) (stop func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Entries returns a copy of the history stack and the current index.
func (h *MemoryHost) Entries() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries), h.index
}

func (h *MemoryHost) notify(location string) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(string), len(ids))
	for i, id := range ids {
		fns[i] = h.listeners[id]
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
}

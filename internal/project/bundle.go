package project

import "sync"

// Entry is one path/content pair of a Bundle.
type Entry struct {
	Path    string
	Content string
}

// Bundle is an insertion-ordered path→content mapping. The first Set of a
// key fixes its position; later Sets overwrite the value in place.
// Set is safe for concurrent use.
type Bundle struct {
	mu     sync.RWMutex
	order  []string
	values map[string]string
}

// NewBundle returns an empty Bundle.
func NewBundle() *Bundle {
	return &Bundle{values: make(map[string]string)}
}

// Set stores content under path.
func (b *Bundle) Set(path, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.values[path]; !ok {
		b.order = append(b.order, path)
	}
	b.values[path] = content
}

// Get returns the content stored under path.
func (b *Bundle) Get(path string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[path]
	return v, ok
}

// Has reports whether path is present.
func (b *Bundle) Has(path string) bool {
	_, ok := b.Get(path)
	return ok
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Paths returns the keys in insertion order.
func (b *Bundle) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Entries returns the pairs in insertion order.
func (b *Bundle) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.order))
	for i, p := range b.order {
		out[i] = Entry{Path: p, Content: b.values[p]}
	}
	return out
}

// Map returns an unordered copy of the bundle.
func (b *Bundle) Map() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Merge copies other's entries into b in other's order.
func (b *Bundle) Merge(other *Bundle) {
	if other == nil {
		return
	}
	for _, e := range other.Entries() {
		b.Set(e.Path, e.Content)
	}
}

// Clone returns an independent copy.
func (b *Bundle) Clone() *Bundle {
	c := NewBundle()
	c.Merge(b)
	return c
}

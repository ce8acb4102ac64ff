package securities

import (
	"sync"
)

// Ref identifies a security resolved during extraction.
type Ref struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
}

// Registry is the get-or-create contract for security identity. The engine
// never owns security identity; it only requests it. GetOrCreate must be
// idempotent per (ticker, name) and safe for concurrent callers, since
// independent documents may be extracted in parallel.
type Registry interface {
	GetOrCreate(ticker, name string) (Ref, error)
}

type key struct {
	ticker, name string
}

// MemRegistry is an in-memory Registry. A single mutex serializes
// get-or-create calls so two parallel extractions never create duplicate
// entries for the same instrument.
type MemRegistry struct {
	mu   sync.Mutex
	refs map[key]Ref
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{refs: make(map[key]Ref)}
}

func (r *MemRegistry) GetOrCreate(ticker, name string) (Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{ticker: ticker, name: name}
	if ref, ok := r.refs[k]; ok {
		return ref, nil
	}
	ref := Ref{Ticker: ticker, Name: name}
	r.refs[k] = ref
	return ref, nil
}

// Len reports how many distinct securities have been created.
func (r *MemRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

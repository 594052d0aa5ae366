package dynamics

import "stridelab/internal/store"

// Resolver memoizes resolved biomechanics per session for the lifetime
// of one aggregation call, keyed by session ID. Not safe for concurrent
// use; each request gets its own Resolver.
type Resolver struct {
	cache map[int64]*Values
}

// NewResolver creates an empty per-request resolver
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[int64]*Values)}
}

// Resolve returns the session's resolved triple, computing it at most
// once per session ID.
func (r *Resolver) Resolve(s *store.Session) *Values {
	if v, ok := r.cache[s.ID]; ok {
		return v
	}
	v := Resolve(s)
	r.cache[s.ID] = v
	return v
}

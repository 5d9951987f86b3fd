package field

import "fmt"

// Registry holds the live source set. Handles stay valid until the source
// is unregistered; iteration follows registration order so results are
// reproducible run to run.
type Registry struct {
	seq     SourceID
	order   []SourceID
	sources map[SourceID]*Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[SourceID]*Source)}
}

// Register validates s and adds it, returning its handle. The registry
// keeps a reference, not a copy: the caller remains the owner.
func (r *Registry) Register(s *Source) (SourceID, error) {
	if err := s.Validate(); err != nil {
		return NoSource, err
	}
	r.seq++
	id := r.seq
	r.order = append(r.order, id)
	r.sources[id] = s
	return id, nil
}

// Unregister removes the source behind id. Removing an unknown handle is
// a no-op and reports false.
func (r *Registry) Unregister(id SourceID) bool {
	if _, ok := r.sources[id]; !ok {
		return false
	}
	delete(r.sources, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Source resolves a handle to the registered source.
func (r *Registry) Source(id SourceID) (*Source, error) {
	s, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSource, id)
	}
	return s, nil
}

func (r *Registry) Len() int { return len(r.order) }

// IDs returns the handles in registration order.
func (r *Registry) IDs() []SourceID {
	ids := make([]SourceID, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Registry) view(id SourceID) SourceView {
	s := r.sources[id]
	return SourceView{
		ID:              id,
		Center:          s.Center,
		SurfaceStrength: s.SurfaceStrength,
		SurfaceRadius:   s.SurfaceRadius,
		MaxRange:        s.MaxRange,
		Priority:        s.Priority,
		Participation:   s.Participation,
	}
}

// Snapshot appends per-tick copies of every source to dst[:0] and returns
// the filled slice. Reusing dst across ticks keeps the pass allocation-free
// once the slice has grown to the registry size.
func (r *Registry) Snapshot(dst []SourceView) []SourceView {
	dst = dst[:0]
	for _, id := range r.order {
		dst = append(dst, r.view(id))
	}
	return dst
}

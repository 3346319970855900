package residual

import "iter"

// Registry interns values by key. The first lookup of a key creates the
// value; later lookups return the same one. Keys iterate in creation order.
type Registry[K comparable, V any] struct {
	items map[K]V
	order []K
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{items: make(map[K]V)}
}

// GetOrCreate returns the value for key, calling create when it is new.
func (r *Registry[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := r.items[key]; ok {
		return v
	}
	v := create()
	r.items[key] = v
	r.order = append(r.order, key)
	return v
}

// Get returns the value for key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	v, ok := r.items[key]
	return v, ok
}

// Len returns the number of values.
func (r *Registry[K, V]) Len() int {
	return len(r.order)
}

// All iterates keys and values in creation order.
func (r *Registry[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range r.order {
			if !yield(k, r.items[k]) {
				return
			}
		}
	}
}

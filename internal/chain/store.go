package chain

// Store is a journaled map. Writes made through a Call are undone when the
// call reverts.
type Store[K comparable, V any] struct {
	m map[K]V
}

func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{m: make(map[K]V)}
}

func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store[K, V]) Has(key K) bool {
	_, ok := s.m[key]
	return ok
}

// Set writes value under key and journals the previous state.
func (s *Store[K, V]) Set(call *Call, key K, value V) {
	prev, existed := s.m[key]
	call.OnRevert(func() {
		if existed {
			s.m[key] = prev
		} else {
			delete(s.m, key)
		}
	})
	s.m[key] = value
}

func (s *Store[K, V]) Len() int {
	return len(s.m)
}

// Cell is a single journaled value.
type Cell[V any] struct {
	v V
}

func NewCell[V any](initial V) *Cell[V] {
	return &Cell[V]{v: initial}
}

func (c *Cell[V]) Get() V {
	return c.v
}

// Set writes v and journals the previous value.
func (c *Cell[V]) Set(call *Call, v V) {
	prev := c.v
	call.OnRevert(func() { c.v = prev })
	c.v = v
}

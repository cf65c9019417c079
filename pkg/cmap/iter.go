package cmap

// Range calls fn for every entry until fn returns false. fn must not call
// back into the map, since the shard being visited is read-locked.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// DeleteIf removes every entry for which fn returns true and returns how
// many were removed. Each shard is write-locked while it is scanned.
func (m *Map[V]) DeleteIf(fn func(key string, value V) bool) int {
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if fn(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

package value

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an insertion-ordered map with unique keys. Key identity is deep
// equality (see Equal), so two equal objects address the same entry.
type Map struct {
	entries []MapEntry
	// digest -> positions in entries
	buckets map[uint64][]int
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) sealed()    {}

// NewMap builds a Map from pairs. A repeated key keeps its first position and
// takes the last value.
func NewMap(entries ...MapEntry) *Map {
	m := &Map{entries: make([]MapEntry, 0, len(entries))}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *Map) index(key Value) (int, uint64) {
	d := digest(key)
	if m == nil {
		return -1, d
	}
	for _, i := range m.buckets[d] {
		if Equal(m.entries[i].Key, key) {
			return i, d
		}
	}
	return -1, d
}

// Set inserts or replaces the value stored under key.
func (m *Map) Set(key, val Value) {
	i, d := m.index(key)
	if i >= 0 {
		m.entries[i].Value = val
		return
	}
	if m.buckets == nil {
		m.buckets = map[uint64][]int{}
	}
	m.buckets[d] = append(m.buckets[d], len(m.entries))
	m.entries = append(m.entries, MapEntry{Key: key, Value: val})
}

// Get returns the value stored under key.
func (m *Map) Get(key Value) (Value, bool) {
	if i, _ := m.index(key); i >= 0 {
		return m.entries[i].Value, true
	}
	return nil, false
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key Value) bool {
	i, _ := m.index(key)
	if i < 0 {
		return false
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	m.buckets = map[uint64][]int{}
	for j, e := range m.entries {
		d := digest(e.Key)
		m.buckets[d] = append(m.buckets[d], j)
	}
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in insertion order.
func (m *Map) Entries() []MapEntry {
	if m == nil {
		return nil
	}
	out := make([]MapEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Set is an insertion-ordered collection of unique values, compared with
// Equal.
type Set struct {
	members []Value
	// digest -> positions in members
	buckets map[uint64][]int
}

func (*Set) Kind() Kind { return KindSet }
func (*Set) sealed()    {}

// NewSet builds a Set, dropping repeated members.
func NewSet(members ...Value) *Set {
	s := &Set{members: make([]Value, 0, len(members))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

func (s *Set) index(v Value) (int, uint64) {
	d := digest(v)
	if s == nil {
		return -1, d
	}
	for _, i := range s.buckets[d] {
		if Equal(s.members[i], v) {
			return i, d
		}
	}
	return -1, d
}

// Add inserts v unless an equal member exists. It reports whether v was added.
func (s *Set) Add(v Value) bool {
	i, d := s.index(v)
	if i >= 0 {
		return false
	}
	if s.buckets == nil {
		s.buckets = map[uint64][]int{}
	}
	s.buckets[d] = append(s.buckets[d], len(s.members))
	s.members = append(s.members, v)
	return true
}

// Has reports membership.
func (s *Set) Has(v Value) bool {
	i, _ := s.index(v)
	return i >= 0
}

// Delete removes v, reporting whether it was a member.
func (s *Set) Delete(v Value) bool {
	i, _ := s.index(v)
	if i < 0 {
		return false
	}
	s.members = append(s.members[:i], s.members[i+1:]...)
	s.buckets = map[uint64][]int{}
	for j, m := range s.members {
		d := digest(m)
		s.buckets[d] = append(s.buckets[d], j)
	}
	return true
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns the members in insertion order.
func (s *Set) Members() []Value {
	if s == nil {
		return nil
	}
	out := make([]Value, len(s.members))
	copy(out, s.members)
	return out
}

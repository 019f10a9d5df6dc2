package naming

import "github.com/ghalamif/mcap2mat/internal/domain"

// Mapper assigns each distinct original name exactly one sanitized name and
// keeps both directions. Registration order drives collision numbering, so
// callers must register names in first-seen order.
type Mapper struct {
	used    map[string]struct{}
	forward map[string]string
	reverse map[string]string
	pairs   []domain.NamePair
}

// NewMapper returns a Mapper with the given names already taken.
func NewMapper(reserved ...string) *Mapper {
	m := &Mapper{
		used:    make(map[string]struct{}, len(reserved)),
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
	for _, r := range reserved {
		m.used[r] = struct{}{}
	}
	return m
}

// Register returns the sanitized name for original, allocating one on first
// sight.
func (m *Mapper) Register(original string) string {
	if safe, ok := m.forward[original]; ok {
		return safe
	}
	safe := Sanitize(original, m.used)
	m.forward[original] = safe
	m.reverse[safe] = original
	m.pairs = append(m.pairs, domain.NamePair{Original: original, Safe: safe})
	return safe
}

// Safe looks up the sanitized name of original.
func (m *Mapper) Safe(original string) (string, bool) {
	s, ok := m.forward[original]
	return s, ok
}

// Original looks up the original name behind a sanitized one.
func (m *Mapper) Original(safe string) (string, bool) {
	o, ok := m.reverse[safe]
	return o, ok
}

// Pairs returns the mapping in registration order.
func (m *Mapper) Pairs() []domain.NamePair {
	out := make([]domain.NamePair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Len is the number of registered names.
func (m *Mapper) Len() int { return len(m.pairs) }

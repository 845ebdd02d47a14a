package mapping

import "slices"

// ExactMapping keys handlers by exact path. A later handler for the same
// path replaces the earlier one.
type ExactMapping struct {
	byPath map[string]*Handler
	order  []string
}

// NewExactMapping returns an empty exact mapping.
func NewExactMapping() *ExactMapping {
	return &ExactMapping{byPath: make(map[string]*Handler)}
}

// Add inserts h under h.Path and reports whether it replaced a handler.
func (m *ExactMapping) Add(h *Handler) (replaced bool) {
	if _, ok := m.byPath[h.Path]; ok {
		replaced = true
	} else {
		m.order = append(m.order, h.Path)
	}
	m.byPath[h.Path] = h
	return replaced
}

func (m *ExactMapping) Strategy() Strategy { return StrategyExact }

func (m *ExactMapping) Lookup(path string) (*Handler, bool) {
	h, ok := m.byPath[path]
	return h, ok
}

func (m *ExactMapping) Handlers() []*Handler {
	out := make([]*Handler, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.byPath[p])
	}
	return slices.Clip(out)
}

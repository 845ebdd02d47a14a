package mapping

import "slices"

// PatternMapping scans handlers in registration order and returns the
// first whose pattern matches. A broad pattern registered before a more
// specific one shadows it.
type PatternMapping struct {
	handlers []*Handler
}

// NewPatternMapping returns an empty pattern mapping.
func NewPatternMapping() *PatternMapping {
	return &PatternMapping{}
}

// Add appends h. h.Pattern must be set.
func (m *PatternMapping) Add(h *Handler) {
	m.handlers = append(m.handlers, h)
}

func (m *PatternMapping) Strategy() Strategy { return StrategyPattern }

func (m *PatternMapping) Lookup(path string) (*Handler, bool) {
	for _, h := range m.handlers {
		if h.Pattern.MatchString(path) {
			return h, true
		}
	}
	return nil, false
}

func (m *PatternMapping) Handlers() []*Handler {
	return slices.Clone(m.handlers)
}

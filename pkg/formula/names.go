package formula

// NameMap maps original display names to sanitized tokens and remembers
// insertion order.
type NameMap struct {
	order []string
	names map[string]string
}

// NewNameMap returns an empty NameMap.
func NewNameMap() *NameMap {
	return &NameMap{names: make(map[string]string)}
}

// Add registers original with its sanitized token. Blank names and names
// already present are ignored; the return value reports whether a new entry
// was created.
func (m *NameMap) Add(original string) bool {
	if Sanitize(original) == "" {
		return false
	}
	if _, ok := m.names[original]; ok {
		return false
	}
	m.Set(original, Sanitize(original))
	return true
}

// Set records an explicit mapping, replacing any previous token for original.
func (m *NameMap) Set(original, sanitized string) {
	if _, ok := m.names[original]; !ok {
		m.order = append(m.order, original)
	}
	m.names[original] = sanitized
}

// Get returns the token registered for original.
func (m *NameMap) Get(original string) (string, bool) {
	s, ok := m.names[original]
	return s, ok
}

// Has reports whether original is registered.
func (m *NameMap) Has(original string) bool {
	_, ok := m.names[original]
	return ok
}

// Len returns the number of registered names.
func (m *NameMap) Len() int {
	return len(m.order)
}

// Originals returns the registered names in insertion order.
func (m *NameMap) Originals() []string {
	return append([]string(nil), m.order...)
}

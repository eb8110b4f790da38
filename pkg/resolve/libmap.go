package resolve

import (
	"bytes"
	"encoding/json"

	"github.com/stackmesa/depstack/pkg/coord"
)

// Selection is the resolved state of one library: the chosen coordinate,
// the classpath paths it contributes, and the immediate parents it was
// reached through. Top deps have no dependents.
type Selection struct {
	Coord      coord.Coord `json:"coord"`
	Paths      []string    `json:"paths,omitempty"`
	Dependents []coord.Lib `json:"dependents,omitempty"`
}

// LibMap is the final flat mapping from each transitively required library
// to its selection. Iteration order is first-sighting order from expansion,
// which is deterministic given deterministic providers.
type LibMap struct {
	order   []coord.Lib
	entries map[coord.Lib]*Selection

	// Trace is attached when resolution ran with tracing enabled.
	Trace *Trace `json:"-"`
}

// NewLibMap creates an empty lib map.
func NewLibMap() *LibMap {
	return &LibMap{entries: make(map[coord.Lib]*Selection)}
}

// Put appends or replaces a selection, preserving first-insert order.
func (m *LibMap) Put(lib coord.Lib, sel *Selection) {
	if _, ok := m.entries[lib]; !ok {
		m.order = append(m.order, lib)
	}
	m.entries[lib] = sel
}

// Get returns the selection for lib.
func (m *LibMap) Get(lib coord.Lib) (*Selection, bool) {
	sel, ok := m.entries[lib]
	return sel, ok
}

// Libs returns the libraries in insertion order.
func (m *LibMap) Libs() []coord.Lib {
	return m.order
}

// Len returns the number of resolved libraries.
func (m *LibMap) Len() int {
	return len(m.order)
}

// MarshalJSON encodes the lib map as a JSON object keyed by lib, preserving
// insertion order.
func (m *LibMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lib := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lib.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.entries[lib])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a lib map object. Key order in the document is
// preserved as insertion order.
func (m *LibMap) UnmarshalJSON(data []byte) error {
	m.order = nil
	m.entries = make(map[coord.Lib]*Selection)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var lib coord.Lib
		if err := lib.UnmarshalText([]byte(keyTok.(string))); err != nil {
			return err
		}
		var sel Selection
		if err := dec.Decode(&sel); err != nil {
			return err
		}
		m.Put(lib, &sel)
	}
	_, err = dec.Token() // closing brace
	return err
}

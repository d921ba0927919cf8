package minimodel

// Presence is the bit flag recorded per field while a model is populated.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // A value was assigned through Set or SetRaw.
	PresenceDefaultApplied                      // The descriptor default filled the field.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether the flag is set at the JSON Pointer path.
func (pm PresenceMap) Has(path string, flag Presence) bool {
	return pm[path]&flag != 0
}

// presenceCollector is implemented by nodes that track presence.
type presenceCollector interface {
	collectPresence(at PathRef, pm PresenceMap)
}

// Presence returns the presence flags of every field in the tree, keyed by
// JSON Pointer. Fields never assigned nor defaulted are absent from the map.
func (m *Model) Presence() PresenceMap {
	pm := PresenceMap{}
	m.collectPresence(rootRef(), pm)
	return pm
}

func (m *Model) collectPresence(at PathRef, pm PresenceMap) {
	for _, k := range m.keys {
		if pc, ok := m.data[k].(presenceCollector); ok {
			pc.collectPresence(at.Field(k), pm)
		}
	}
}

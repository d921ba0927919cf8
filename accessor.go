package minimodel

// Accessor is a per-field handle on a model instance. Get and Set forward to
// the model, so an accessor and Model.Get/Set(name) are interchangeable.
type Accessor struct {
	model *Model
	name  string
}

// Name returns the field name.
func (a *Accessor) Name() string { return a.name }

func (a *Accessor) Get() (any, error) { return a.model.Get(a.name) }

func (a *Accessor) Set(v any) error { return a.model.Set(a.name, v) }

func (m *Model) defineAccessors() {
	m.accessors = make([]*Accessor, len(m.keys))
	for i, k := range m.keys {
		m.accessors[i] = &Accessor{model: m, name: k}
	}
}

// Accessor returns the accessor of a top-level field, or nil.
func (m *Model) Accessor(name string) *Accessor {
	for _, a := range m.accessors {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Accessors returns one accessor per field in canonical order.
func (m *Model) Accessors() []*Accessor { return append([]*Accessor(nil), m.accessors...) }

package minimodel

import (
	"reflect"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ModelType is a compiled schema. It instantiates models and can be nested
// in other schemas as a type reference.
type ModelType struct {
	compiler *Compiler
	schema   *Schema
}

// Name implements Type.
func (*ModelType) Name() string { return "Model" }

// Schema returns the compiled field table.
func (mt *ModelType) Schema() *Schema { return mt.schema }

// Compiler returns the compiler the type was built with.
func (mt *ModelType) Compiler() *Compiler { return mt.compiler }

// InstanceOpt configures model instantiation.
type InstanceOpt struct {
	// Parent is the owning model; custom accessors see the root-most owner.
	Parent *Model
	// DoNotSetDefaults skips applying descriptor defaults after assignment.
	DoNotSetDefaults bool
}

// New instantiates a model, assigns values (any mapping accepted by
// Model.Set) and applies defaults.
func (mt *ModelType) New(values any) (*Model, error) {
	return mt.NewWithOpt(values, InstanceOpt{})
}

// MustNew is like New but panics when assignment fails.
func (mt *ModelType) MustNew(values any) *Model {
	m, err := mt.New(values)
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithOpt is New with explicit options.
func (mt *ModelType) NewWithOpt(values any, opt InstanceOpt) (*Model, error) {
	m := mt.instantiate(opt.Parent, nil)
	if values != nil {
		if err := m.Set("", values); err != nil {
			return nil, err
		}
	}
	if !opt.DoNotSetDefaults {
		m.SetDefault()
	}
	return m, nil
}

// instantiate builds an empty model with one node per schema key. d is the
// descriptor the model is nested under, nil for a root model. Defaults are
// left to the caller.
func (mt *ModelType) instantiate(parent *Model, d *Descriptor) *Model {
	m := &Model{typ: mt, parent: parent, desc: d, data: make(map[string]Node, mt.schema.Len())}
	root := m.Root()
	m.keys = mt.schema.Keys()
	for _, k := range m.keys {
		m.data[k] = instantiate(mt.schema.typed[k], mt.schema.normalized[k], root)
	}
	m.defineAccessors()
	return m
}

// instantiate builds a node for a compiled field owned by owner.
func instantiate(t Type, d *Descriptor, owner *Model) Node {
	switch t := t.(type) {
	case *ModelType:
		return t.instantiate(owner, d)
	case FieldType:
		return t.New(d, owner)
	}
	return AnyType.New(d, owner)
}

// Property adds the field at path, or replaces it keeping its position.
// Dotted paths address fields of nested model types. Models already
// instantiated keep their fields.
func (mt *ModelType) Property(path string, desc any) error {
	head, rest := splitHead(path)
	if head == "" {
		return &SchemaDefinitionError{Path: path, Reason: "empty field name"}
	}
	if rest != "" {
		nested, ok := mt.schema.typed[head].(*ModelType)
		if !ok {
			return &SchemaDefinitionError{Path: path, Reason: head + " is not a nested model"}
		}
		if err := nested.Property(rest, desc); err != nil {
			if sde, ok := err.(*SchemaDefinitionError); ok {
				return sde.within(head)
			}
			return err
		}
		return nil
	}
	p, _, err := mt.compiler.parseField(desc)
	if err != nil {
		return err.within(head)
	}
	replaced := mt.schema.put(head, p)
	mt.compiler.log.Debug().Str("field", head).Bool("replaced", replaced).Msg("property defined")
	return nil
}

// Model is an instance of a ModelType.
type Model struct {
	typ       *ModelType
	parent    *Model
	desc      *Descriptor
	keys      []string
	data      map[string]Node
	accessors []*Accessor
}

// Type returns the model's compiled type.
func (m *Model) Type() *ModelType { return m.typ }

// Parent returns the owning model, or nil for a root model.
func (m *Model) Parent() *Model { return m.parent }

// Root returns the root-most owner, m itself when it has no parent.
func (m *Model) Root() *Model {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Keys returns the field names in canonical order.
func (m *Model) Keys() []string { return append([]string(nil), m.keys...) }

// Field returns the node of a top-level field, or nil.
func (m *Model) Field(name string) Node { return m.data[name] }

// Get reads the value at a dotted path. The empty path returns m; unknown
// names read nil.
func (m *Model) Get(path string) (any, error) {
	if path == "" {
		return m, nil
	}
	head, rest := splitHead(path)
	n, ok := m.data[head]
	if !ok {
		return nil, nil
	}
	return n.Get(rest)
}

// GetRaw is Get bypassing custom getters.
func (m *Model) GetRaw(path string) (any, error) {
	if path == "" {
		return m, nil
	}
	head, rest := splitHead(path)
	n, ok := m.data[head]
	if !ok {
		return nil, nil
	}
	return n.GetRaw(rest)
}

// Set writes v at a dotted path. The empty path assigns a whole mapping; see
// assign for the accepted shapes. Unknown names are ignored.
func (m *Model) Set(path string, v any) error {
	if path == "" {
		return m.assign(v, false)
	}
	head, rest := splitHead(path)
	n, ok := m.data[head]
	if !ok {
		return nil
	}
	return n.Set(rest, v)
}

// SetRaw is Set bypassing casts and custom setters.
func (m *Model) SetRaw(path string, v any) error {
	if path == "" {
		return m.assign(v, true)
	}
	head, rest := splitHead(path)
	n, ok := m.data[head]
	if !ok {
		return nil
	}
	return n.SetRaw(rest, v)
}

// assign sets every entry of a mapping. It accepts map[string]any (schema
// order first, then remaining keys sorted), an ordered map (insertion order),
// another *Model (its unfiltered export) and structs. Other values are
// ignored. The first error is returned after all entries are tried.
func (m *Model) assign(v any, raw bool) error {
	var firstErr error
	set := func(k string, val any) {
		var err error
		if raw {
			err = m.SetRaw(k, val)
		} else {
			err = m.Set(k, val)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	switch src := v.(type) {
	case nil:
		return nil
	case *Model:
		if src == nil {
			return nil
		}
		return m.assign(src.exportMap(TargetAll), raw)
	case map[string]any:
		for _, k := range m.keys {
			if val, ok := src[k]; ok {
				set(k, val)
			}
		}
		var rest []string
		for k := range src {
			if _, known := m.data[k]; !known && strings.Contains(k, ".") {
				rest = append(rest, k)
			}
		}
		sort.Strings(rest)
		for _, k := range rest {
			set(k, src[k])
		}
	case *orderedmap.OrderedMap[string, any]:
		if src == nil {
			return nil
		}
		for pair := src.Oldest(); pair != nil; pair = pair.Next() {
			set(pair.Key, pair.Value)
		}
	default:
		om, ok := structToOrdered(reflect.ValueOf(v))
		if !ok {
			return nil
		}
		return m.assign(om, raw)
	}
	return firstErr
}

// SetDefault applies defaults to every field in key order.
func (m *Model) SetDefault() {
	for _, k := range m.keys {
		m.data[k].SetDefault()
	}
}

// Validate validates every field and returns a *ModelValidationError keyed
// by field name, or nil.
func (m *Model) Validate() error {
	errs := newModelValidationError()
	for _, k := range m.keys {
		if err := m.data[k].Validate(); err != nil {
			errs.add(k, err)
		}
	}
	if errs.empty() {
		return nil
	}
	return errs
}

// Include implements Node. A nested model is exported unless the descriptor
// it is nested under opts the target out. The inclusion predicate receives a
// field whose Value is the nested model. Required and Default options of a
// nested model descriptor have no effect.
func (m *Model) Include(t Target) bool {
	if t == TargetAll || m.desc == nil {
		return true
	}
	inc := m.desc.inclusion(t)
	if inc == nil {
		return true
	}
	return inc(&Field{typ: AnyType, model: m.Root(), desc: m.desc, value: m})
}

// Export implements Node. It returns a map[string]any.
func (m *Model) Export(t Target) any { return m.exportMap(t) }

func (m *Model) exportMap(t Target) map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		n := m.data[k]
		if n.Include(t) {
			out[k] = n.Export(t)
		}
	}
	return out
}

// ToObject exports native values, excluding fields opted out of objects.
func (m *Model) ToObject() map[string]any { return m.exportMap(TargetObject) }

// ToJSON exports JSON-ready values.
func (m *Model) ToJSON() map[string]any { return m.exportMap(TargetJSON) }

// ToDB exports values for storage.
func (m *Model) ToDB() map[string]any { return m.exportMap(TargetDB) }

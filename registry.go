package minimodel

// Type is a compiled field type: either a FieldType or a *ModelType.
type Type interface {
	Name() string
}

// FieldType is a field variant. It decides whether it handles a normalized
// descriptor and instantiates fields for it. model is the root-most owning
// model, reachable from custom accessors through Field.Model.
type FieldType interface {
	Type
	Matches(d *Descriptor) bool
	New(d *Descriptor, model *Model) Node
}

// Preparer is implemented by field types that need compile-time work on
// their normalized descriptor, such as parsing an array's element type.
type Preparer interface {
	Prepare(c *Compiler, d *Descriptor) error
}

// Registry is an ordered list of field types. The first type whose Matches
// accepts a descriptor wins.
type Registry struct {
	types []FieldType
}

// NewRegistry returns a registry holding types in the given order.
func NewRegistry(types ...FieldType) *Registry {
	return &Registry{types: append([]FieldType(nil), types...)}
}

// DefaultRegistry returns a fresh registry with the built-in field types:
// Boolean, String, Number, Date, Array, UUID.
func DefaultRegistry() *Registry {
	return NewRegistry(BooleanType, StringType, NumberType, DateType, ArrayType, UUIDType)
}

// Register appends t, giving it the lowest priority.
func (r *Registry) Register(t FieldType) *Registry {
	r.types = append(r.types, t)
	return r
}

// Prepend inserts t in front, giving it the highest priority.
func (r *Registry) Prepend(t FieldType) *Registry {
	r.types = append([]FieldType{t}, r.types...)
	return r
}

// Types returns the registered types in priority order.
func (r *Registry) Types() []FieldType { return append([]FieldType(nil), r.types...) }

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry { return NewRegistry(r.types...) }

// Resolve returns the first field type matching d, or nil.
func (r *Registry) Resolve(d *Descriptor) FieldType {
	if d == nil || d.Type == nil {
		return nil
	}
	for _, t := range r.types {
		if t.Matches(d) {
			return t
		}
	}
	return nil
}

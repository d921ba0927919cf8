package minimodel

import "github.com/reoring/minimodel/internal/coerce"

// Marker is a bare type marker used in descriptors, e.g. {"id", String}.
// Markers are resolved to field types by the compiler's Registry.
type Marker string

// Built-in markers.
const (
	String  Marker = "String"
	Number  Marker = "Number"
	Boolean Marker = "Boolean"
	Date    Marker = "Date"
	UUID    Marker = "UUID"
)

// Entry is one named field of a Fields descriptor.
type Entry struct {
	Name string
	Desc any
}

// Fields is an ordered descriptor mapping from field name to descriptor.
// Entry order is the canonical field order of the compiled model.
//
// A descriptor is one of:
//   - a Marker (String, Number, ...), a FieldType or a *ModelType
//   - a Descriptor (or *Descriptor) carrying Type plus options
//   - a one-element []any array marker, e.g. []any{String}
//   - a nested Fields mapping, which may also carry a "type" entry plus
//     option entries ("required", "default", "get", ...)
type Fields []Entry

// Lookup returns the descriptor stored under name.
func (fs Fields) Lookup(name string) (any, bool) {
	for _, e := range fs {
		if e.Name == name {
			return e.Desc, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (fs Fields) Names() []string {
	out := make([]string, len(fs))
	for i, e := range fs {
		out[i] = e.Name
	}
	return out
}

// GetterFunc computes a field's value. It replaces the default getter.
type GetterFunc func(f *Field) any

// SetterFunc stores an already cast value. It replaces the default setter.
type SetterFunc func(f *Field, v any) error

// CastFunc converts raw input before it is stored. It replaces the type's cast.
type CastFunc func(f *Field, v any) any

// ValidatorFunc is a custom validator run after the built-in ones.
type ValidatorFunc func(f *Field) error

// DefaultFunc computes a default value. A Descriptor.Default of this type
// (or func(*Field) any) is invoked; any other value is used as a literal.
type DefaultFunc func(f *Field) any

// Inclusion decides at export time whether a field is included in a target.
// A nil Inclusion means "not specified".
type Inclusion func(f *Field) bool

// Flag returns a constant Inclusion.
func Flag(include bool) Inclusion {
	return func(*Field) bool { return include }
}

// Descriptor is the options form of a field descriptor and the normalized
// form every compiled field carries.
type Descriptor struct {
	Type     any
	Required bool
	Default  any

	Get      GetterFunc
	Set      SetterFunc
	Cast     CastFunc
	Validate ValidatorFunc

	IncludeInObject Inclusion
	IncludeInJSON   Inclusion
	IncludeInDB     Inclusion

	// Options keeps any extra option keys given in a Fields descriptor.
	Options map[string]any

	// Source is the mapping an implicit nested model was compiled from.
	Source Fields

	elem *Parsed
}

// Element returns the compiled element of an array descriptor.
func (d *Descriptor) Element() (Parsed, bool) {
	if d == nil || d.elem == nil {
		return Parsed{}, false
	}
	return *d.elem, true
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	if d.Options != nil {
		c.Options = make(map[string]any, len(d.Options))
		for k, v := range d.Options {
			c.Options[k] = v
		}
	}
	return &c
}

// defaultValue evaluates the descriptor default for f.
func (d *Descriptor) defaultValue(f *Field) any {
	switch fn := d.Default.(type) {
	case DefaultFunc:
		return fn(f)
	case func(*Field) any:
		return fn(f)
	}
	return d.Default
}

func (d *Descriptor) inclusion(t Target) Inclusion {
	switch t {
	case TargetObject:
		return d.IncludeInObject
	case TargetJSON:
		return d.IncludeInJSON
	case TargetDB:
		return d.IncludeInDB
	}
	return nil
}

// typeOf returns "desc.type": the Type of a Descriptor, or the "type" entry
// of a Fields mapping.
func typeOf(desc any) (any, bool) {
	switch d := desc.(type) {
	case Descriptor:
		return d.Type, d.Type != nil
	case *Descriptor:
		if d == nil {
			return nil, false
		}
		return d.Type, d.Type != nil
	case Fields:
		return d.Lookup("type")
	}
	return nil, false
}

// asDescriptor normalizes an options-bearing descriptor into a fresh
// *Descriptor. Fields option entries are mapped onto the struct.
func asDescriptor(desc any) *Descriptor {
	switch d := desc.(type) {
	case Descriptor:
		return d.clone()
	case *Descriptor:
		return d.clone()
	case Fields:
		return descriptorFromFields(d)
	}
	return &Descriptor{Type: desc}
}

func descriptorFromFields(fs Fields) *Descriptor {
	d := &Descriptor{}
	for _, e := range fs {
		switch e.Name {
		case "type":
			d.Type = e.Desc
		case "required":
			d.Required = coerce.Truthy(e.Desc)
		case "default":
			d.Default = e.Desc
		case "get":
			d.Get = getterOf(e.Desc)
		case "set":
			d.Set = setterOf(e.Desc)
		case "cast":
			d.Cast = casterOf(e.Desc)
		case "validate":
			d.Validate = validatorOf(e.Desc)
		case "includeInObject":
			d.IncludeInObject = inclusionOf(e.Desc)
		case "includeInJson", "includeInJSON":
			d.IncludeInJSON = inclusionOf(e.Desc)
		case "includeInDb", "includeInDB":
			d.IncludeInDB = inclusionOf(e.Desc)
		default:
			if d.Options == nil {
				d.Options = map[string]any{}
			}
			d.Options[e.Name] = e.Desc
		}
	}
	return d
}

func getterOf(v any) GetterFunc {
	switch fn := v.(type) {
	case GetterFunc:
		return fn
	case func(*Field) any:
		return fn
	}
	return nil
}

func setterOf(v any) SetterFunc {
	switch fn := v.(type) {
	case SetterFunc:
		return fn
	case func(*Field, any) error:
		return fn
	}
	return nil
}

func casterOf(v any) CastFunc {
	switch fn := v.(type) {
	case CastFunc:
		return fn
	case func(*Field, any) any:
		return fn
	}
	return nil
}

func validatorOf(v any) ValidatorFunc {
	switch fn := v.(type) {
	case ValidatorFunc:
		return fn
	case func(*Field) error:
		return fn
	}
	return nil
}

func inclusionOf(v any) Inclusion {
	switch fn := v.(type) {
	case nil:
		return nil
	case Inclusion:
		return fn
	case func(*Field) bool:
		return fn
	case bool:
		return Flag(fn)
	}
	return Flag(coerce.Truthy(v))
}

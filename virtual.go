package minimodel

// VirtualType is a computed field with no storage of its own. Its value
// comes from the descriptor's Get/Set, which usually read or write sibling
// fields through Field.Model. Virtual fields are not exported unless the
// descriptor opts a target in.
var VirtualType FieldType = virtualType{}

type virtualType struct{}

func (virtualType) Name() string             { return "Virtual" }
func (virtualType) Matches(*Descriptor) bool { return false }

func (t virtualType) New(d *Descriptor, model *Model) Node {
	f := NewField(t, d, model, FieldOpt{})
	f.virtual = true
	f.rawGet = func() any { return nil }
	f.rawSet = func(any) error { return nil }
	return f
}

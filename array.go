package minimodel

import (
	"math"
	"strconv"

	"github.com/reoring/minimodel/internal/coerce"
)

// ArrayType holds an ordered sequence of homogeneous elements. It matches
// a one-element array marker such as []any{String} or []any{Fields{...}};
// the single entry is the element descriptor.
var ArrayType FieldType = arrayType{}

type arrayType struct{}

func (arrayType) Name() string { return "Array" }

func (arrayType) Matches(d *Descriptor) bool {
	_, ok := arrayElement(d.Type)
	return ok
}

// arrayElement returns the element descriptor of a one-element marker.
func arrayElement(marker any) (any, bool) {
	if _, isFields := marker.(Fields); isFields {
		return nil, false
	}
	seq, ok := coerce.Sequence(marker)
	if !ok || len(seq) != 1 {
		return nil, false
	}
	return seq[0], true
}

// Prepare compiles the element descriptor once per schema.
func (arrayType) Prepare(c *Compiler, d *Descriptor) error {
	elem, ok := arrayElement(d.Type)
	if !ok {
		return &SchemaDefinitionError{Reason: "array marker must hold exactly one element type"}
	}
	p, _, err := c.parseField(elem)
	if err != nil {
		return err.within("0")
	}
	d.elem = &p
	return nil
}

func (t arrayType) New(d *Descriptor, model *Model) Node {
	a := &ArrayField{}
	if p, ok := d.Element(); ok {
		a.elem = p
	} else {
		a.elem = Parsed{Typed: AnyType, Normalized: &Descriptor{Type: AnyType}}
	}
	a.Field = NewField(t, d, model, FieldOpt{
		Missing: func(v any) bool {
			seq, ok := coerce.Sequence(v)
			return v == nil || (ok && len(seq) == 0)
		},
		Validators: []ValidatorFunc{a.validateItems},
	})
	a.Field.rawGet = a.rawValue
	a.Field.rawSet = a.replace
	return a
}

// ArrayField is the field of an ArrayType. Each element is an independent
// Field or nested Model addressed by index ("comments.1", "comments.1.text").
type ArrayField struct {
	*Field
	elem     Parsed
	items    []Node
	invalid  any // non-sequence raw value, kept for validation
	defaults bool
}

// Len returns the number of elements.
func (a *ArrayField) Len() int { return len(a.items) }

// Item returns the element node at i, or nil when out of range.
func (a *ArrayField) Item(i int) Node {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Element returns the compiled element type and descriptor.
func (a *ArrayField) Element() Parsed { return a.elem }

func (a *ArrayField) newItem() Node {
	return instantiate(a.elem.Typed, a.elem.Normalized, a.model)
}

func (a *ArrayField) rawValue() any {
	if a.invalid != nil {
		return a.invalid
	}
	if a.items == nil {
		return nil
	}
	out := make([]any, len(a.items))
	for i, it := range a.items {
		out[i], _ = it.GetRaw("")
	}
	return out
}

// replace swaps the whole backing sequence for fresh elements built from v.
func (a *ArrayField) replace(v any) error {
	a.items, a.invalid = nil, nil
	if v == nil {
		return nil
	}
	seq, ok := coerce.Sequence(v)
	if !ok {
		a.invalid = v
		return nil
	}
	items := make([]Node, 0, len(seq))
	for _, raw := range seq {
		it := a.newItem()
		if err := it.Set("", raw); err != nil {
			return err
		}
		if a.defaults {
			it.SetDefault()
		}
		items = append(items, it)
	}
	a.items = items
	return nil
}

// maxArrayGap bounds how many elements a single Set may create past the end.
const maxArrayGap = 1 << 16

// index parses the leading segment of path as a plain decimal index.
func (a *ArrayField) index(path string) (int, string, error) {
	head, rest := splitHead(path)
	u, err := strconv.ParseUint(head, 10, 0)
	if err != nil || u > math.MaxInt {
		return 0, "", &InvalidPathError{Path: path, Segment: head}
	}
	return int(u), rest, nil
}

func (a *ArrayField) Get(path string) (any, error) {
	if path == "" {
		if a.desc.Get != nil || a.items == nil {
			return a.Field.Get("")
		}
		out := make([]any, len(a.items))
		for i, it := range a.items {
			out[i], _ = it.Get("")
		}
		return out, nil
	}
	i, rest, err := a.index(path)
	if err != nil {
		return nil, err
	}
	if i >= len(a.items) {
		return nil, nil
	}
	return a.items[i].Get(rest)
}

func (a *ArrayField) GetRaw(path string) (any, error) {
	if path == "" {
		return a.Field.GetRaw("")
	}
	i, rest, err := a.index(path)
	if err != nil {
		return nil, err
	}
	if i >= len(a.items) {
		return nil, nil
	}
	return a.items[i].GetRaw(rest)
}

func (a *ArrayField) Set(path string, v any) error {
	if path == "" {
		return a.Field.Set("", v)
	}
	return a.setAt(path, v, false)
}

func (a *ArrayField) SetRaw(path string, v any) error {
	if path == "" {
		return a.Field.SetRaw("", v)
	}
	return a.setAt(path, v, true)
}

// setAt writes through an element, creating it (and any gap before it)
// when the index is past the end.
func (a *ArrayField) setAt(path string, v any, raw bool) error {
	i, rest, err := a.index(path)
	if err != nil {
		return err
	}
	if i-len(a.items) > maxArrayGap {
		return &InvalidPathError{Path: path, Segment: strconv.Itoa(i)}
	}
	if a.invalid != nil {
		a.invalid = nil
	}
	if a.items == nil {
		a.items = []Node{}
	}
	created := len(a.items)
	for len(a.items) <= i {
		a.items = append(a.items, a.newItem())
	}
	a.presence |= PresenceSeen
	it := a.items[i]
	if raw {
		err = it.SetRaw(rest, v)
	} else {
		err = it.Set(rest, v)
	}
	if a.defaults {
		for _, n := range a.items[created:] {
			n.SetDefault()
		}
	}
	return err
}

// SetDefault applies the array's own default when it is absent, then the
// element defaults. Elements created later get their defaults on creation.
func (a *ArrayField) SetDefault() {
	a.Field.SetDefault()
	a.defaults = true
	for _, it := range a.items {
		it.SetDefault()
	}
}

func (a *ArrayField) validateItems(*Field) error {
	if a.invalid != nil {
		return wrongType("Array")
	}
	errs := newModelValidationError()
	for i, it := range a.items {
		if err := it.Validate(); err != nil {
			errs.add(strconv.Itoa(i), err)
		}
	}
	if errs.empty() {
		return nil
	}
	return errs
}

func (a *ArrayField) Export(t Target) any {
	if a.desc.Get != nil || a.invalid != nil {
		return a.Field.Export(t)
	}
	if a.items == nil {
		return nil
	}
	out := make([]any, len(a.items))
	for i, it := range a.items {
		out[i] = it.Export(t)
	}
	return out
}

func (a *ArrayField) collectPresence(at PathRef, pm PresenceMap) {
	a.Field.collectPresence(at, pm)
	for i, it := range a.items {
		if pc, ok := it.(presenceCollector); ok {
			pc.collectPresence(at.Index(i), pm)
		}
	}
}

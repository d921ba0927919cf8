package minimodel

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Node is an instantiated element of a model's field tree: a *Field variant,
// an *ArrayField or a nested *Model.
//
// Paths are dotted and relative to the node; the empty path addresses the
// node itself. Leaf fields read nil and ignore writes for non-empty paths.
type Node interface {
	Get(path string) (any, error)
	GetRaw(path string) (any, error)
	Set(path string, v any) error
	SetRaw(path string, v any) error
	SetDefault()
	Validate() error
	Include(t Target) bool
	Export(t Target) any
}

// FieldOpt configures the built-in behavior of a field variant.
type FieldOpt struct {
	// Cast converts raw input; nil means identity. A descriptor Cast wins.
	Cast CastFunc
	// Missing decides what "required" rejects; nil means v == nil.
	Missing func(v any) bool
	// Validators run after the required check, in order.
	Validators []ValidatorFunc
}

// Field owns a single value slot plus cast, validation and export behavior.
// Custom getters, setters, casts and validators receive the field as an
// explicit parameter; Field.Model reaches sibling fields.
type Field struct {
	typ        FieldType
	value      any
	model      *Model
	desc       *Descriptor
	cast       CastFunc
	validators []ValidatorFunc
	virtual    bool
	defaulted  bool
	presence   Presence

	// storage hooks for variants without a plain value slot
	rawGet func() any
	rawSet func(v any) error
}

// NewField builds a field of type t for descriptor d. It is the building
// block for FieldType.New implementations.
func NewField(t FieldType, d *Descriptor, model *Model, opt FieldOpt) *Field {
	if d == nil {
		d = &Descriptor{Type: t}
	}
	f := &Field{typ: t, model: model, desc: d, cast: opt.Cast}
	if d.Cast != nil {
		f.cast = d.Cast
	}
	if d.Required {
		missing := opt.Missing
		if missing == nil {
			missing = func(v any) bool { return v == nil }
		}
		f.validators = append(f.validators, func(f *Field) error {
			if missing(f.raw()) {
				return NewFieldValidationError(KindRequired, nil)
			}
			return nil
		})
	}
	f.validators = append(f.validators, opt.Validators...)
	return f
}

// Type returns the field's type.
func (f *Field) Type() FieldType { return f.typ }

// Model returns the root-most model owning this field.
func (f *Field) Model() *Model { return f.model }

// Descriptor returns the field's normalized descriptor.
func (f *Field) Descriptor() *Descriptor { return f.desc }

// Value returns the stored value, bypassing custom getters.
func (f *Field) Value() any { return f.raw() }

func (f *Field) raw() any {
	if f.rawGet != nil {
		return f.rawGet()
	}
	return f.value
}

func (f *Field) store(v any) error {
	if f.rawSet != nil {
		return f.rawSet(v)
	}
	f.value = v
	return nil
}

func (f *Field) Get(path string) (any, error) {
	if path != "" {
		return nil, nil
	}
	if f.desc.Get != nil {
		return f.desc.Get(f), nil
	}
	return f.raw(), nil
}

func (f *Field) GetRaw(path string) (any, error) {
	if path != "" {
		return nil, nil
	}
	return f.raw(), nil
}

func (f *Field) Set(path string, v any) error {
	if path != "" {
		return nil
	}
	if f.cast != nil {
		v = f.cast(f, v)
	}
	f.presence |= PresenceSeen
	if f.desc.Set != nil {
		return f.desc.Set(f, v)
	}
	return f.store(v)
}

func (f *Field) SetRaw(path string, v any) error {
	if path != "" {
		return nil
	}
	f.presence |= PresenceSeen
	return f.store(v)
}

// SetDefault assigns the descriptor default when the field holds no value.
// A default is applied at most once.
func (f *Field) SetDefault() {
	if f.defaulted || f.desc.Default == nil || f.raw() != nil {
		return
	}
	f.defaulted = true
	if err := f.Set("", f.desc.defaultValue(f)); err != nil {
		f.logger().Warn().Err(err).Str("type", f.typ.Name()).Msg("default not applied")
	}
	f.presence = f.presence&^PresenceSeen | PresenceDefaultApplied
}

var nopLogger = zerolog.Nop()

// logger returns the logger of the compiler that built the owning model.
func (f *Field) logger() *zerolog.Logger {
	if f.model != nil && f.model.typ != nil && f.model.typ.compiler != nil {
		return &f.model.typ.compiler.log
	}
	return &nopLogger
}

// Validate runs the built-in validators in order and returns the first
// failure, then the descriptor's custom validator.
func (f *Field) Validate() error {
	for _, v := range f.validators {
		if err := runValidator(v, f); err != nil {
			return err
		}
	}
	if f.desc.Validate != nil {
		return runValidator(f.desc.Validate, f)
	}
	return nil
}

// runValidator isolates a panicking validator into a generic failure.
func runValidator(v ValidatorFunc, f *Field) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fe := NewFieldValidationError(KindGeneric, map[string]any{"panic": fmt.Sprint(r)})
			if cause, ok := r.(error); ok {
				fe.Cause = cause
			}
			err = fe
		}
	}()
	return v(f)
}

// Include reports whether the field is exported to t. Ordinary fields are
// included unless the descriptor says otherwise; virtual fields are
// excluded unless the descriptor opts the target in.
func (f *Field) Include(t Target) bool {
	if t == TargetAll {
		return true
	}
	inc := f.desc.inclusion(t)
	if inc == nil {
		return !f.virtual
	}
	return inc(f)
}

func (f *Field) Export(t Target) any {
	v, _ := f.Get("")
	return exportValue(t, v)
}

func (f *Field) collectPresence(at PathRef, pm PresenceMap) {
	if f.presence != 0 {
		pm[at.Pointer()] = f.presence
	}
}

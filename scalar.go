package minimodel

import (
	"math"
	"strings"
	"time"

	"github.com/reoring/minimodel/codec"
	"github.com/reoring/minimodel/internal/coerce"
)

// Built-in scalar field types. Use them as bare type references
// ({"id", StringType}) or let the registry resolve the matching Marker.
var (
	StringType  FieldType = stringType{}
	NumberType  FieldType = numberType{}
	BooleanType FieldType = booleanType{}
	DateType    FieldType = dateType{}
	// AnyType stores values as given. It has no marker and is only used as
	// a type reference.
	AnyType FieldType = anyType{}
)

type stringType struct{}

func (stringType) Name() string               { return "String" }
func (stringType) Matches(d *Descriptor) bool { return d.Type == String }

func (t stringType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{
		Cast:       castString,
		Missing:    func(v any) bool { return v == nil || v == "" },
		Validators: []ValidatorFunc{validateString},
	})
}

// castString renders truthy values as text and passes falsy ones through.
func castString(_ *Field, v any) any {
	if !coerce.Truthy(v) {
		return v
	}
	return coerce.ToString(v)
}

func validateString(f *Field) error {
	v := f.raw()
	if _, ok := v.(string); v != nil && !ok {
		return wrongType("String")
	}
	return nil
}

type numberType struct{}

func (numberType) Name() string               { return "Number" }
func (numberType) Matches(d *Descriptor) bool { return d.Type == Number }

func (t numberType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{
		Cast: castNumber,
		Missing: func(v any) bool {
			f, ok := v.(float64)
			return v == nil || (ok && math.IsNaN(f))
		},
		Validators: []ValidatorFunc{validateNumber},
	})
}

// castNumber stores every number as float64. Other values are parsed from
// their text form; unparsable input becomes NaN. nil stays absent.
func castNumber(_ *Field, v any) any {
	if v == nil {
		return nil
	}
	if n, ok := coerce.Float(v); ok {
		return n
	}
	return coerce.ParseFloat(coerce.ToString(v))
}

func validateNumber(f *Field) error {
	v := f.raw()
	if v == nil {
		return nil
	}
	if n, ok := v.(float64); !ok || math.IsNaN(n) {
		return wrongType("Number")
	}
	return nil
}

type booleanType struct{}

func (booleanType) Name() string               { return "Boolean" }
func (booleanType) Matches(d *Descriptor) bool { return d.Type == Boolean }

func (t booleanType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{Cast: castBoolean})
}

// castBoolean maps recognized literals and numbers to bool; anything else
// becomes nil.
func castBoolean(_ *Field, v any) any {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "false", "no", "0", "":
			return false
		case "true", "yes", "1":
			return true
		}
		return nil
	}
	if n, ok := coerce.Float(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return nil
}

type dateType struct{}

func (dateType) Name() string               { return "Date" }
func (dateType) Matches(d *Descriptor) bool { return d.Type == Date }

func (t dateType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{
		Cast:       castDate,
		Validators: []ValidatorFunc{validateDate},
	})
}

// castDate converts truthy input to time.Time. Input that does not convert is
// stored unchanged and reported by validation.
func castDate(_ *Field, v any) any {
	if !coerce.Truthy(v) {
		return v
	}
	if t, ok := codec.DecodeDate(v); ok {
		return t
	}
	return v
}

func validateDate(f *Field) error {
	v := f.raw()
	if _, ok := v.(time.Time); v != nil && !ok {
		return wrongType("Date")
	}
	return nil
}

type anyType struct{}

func (anyType) Name() string             { return "Any" }
func (anyType) Matches(*Descriptor) bool { return false }

func (t anyType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{Cast: castAny})
}

// castAny copies plain maps and slices so the field never aliases input.
func castAny(_ *Field, v any) any { return coerce.ClonePlain(v) }

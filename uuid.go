package minimodel

import (
	"github.com/google/uuid"

	"github.com/reoring/minimodel/internal/coerce"
)

// UUIDType stores values as uuid.UUID. It resolves from the UUID marker.
var UUIDType FieldType = uuidType{}

// NewUUID is a default that generates a random (version 4) UUID.
var NewUUID DefaultFunc = func(*Field) any { return uuid.New() }

type uuidType struct{}

func (uuidType) Name() string               { return "UUID" }
func (uuidType) Matches(d *Descriptor) bool { return d.Type == UUID }

func (t uuidType) New(d *Descriptor, model *Model) Node {
	return NewField(t, d, model, FieldOpt{
		Cast: castUUID,
		Missing: func(v any) bool {
			id, ok := v.(uuid.UUID)
			return v == nil || (ok && id == uuid.Nil)
		},
		Validators: []ValidatorFunc{validateUUID},
	})
}

// castUUID parses text and byte forms. Unparsable input is stored unchanged
// and reported by validation.
func castUUID(_ *Field, v any) any {
	switch id := v.(type) {
	case uuid.UUID:
		return id
	case [16]byte:
		return uuid.UUID(id)
	case []byte:
		if parsed, err := uuid.ParseBytes(id); err == nil {
			return parsed
		}
		if parsed, err := uuid.FromBytes(id); err == nil {
			return parsed
		}
		return v
	}
	if !coerce.Truthy(v) {
		return v
	}
	if parsed, err := uuid.Parse(coerce.ToString(v)); err == nil {
		return parsed
	}
	return v
}

func validateUUID(f *Field) error {
	v := f.raw()
	if _, ok := v.(uuid.UUID); v != nil && !ok {
		return wrongType("UUID")
	}
	return nil
}

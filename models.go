package minimodel

import "strconv"

// Models is a list of model instances exported together.
type Models []*Model

// ToObject exports each model with ToObject.
func (ms Models) ToObject() []map[string]any { return ms.export(TargetObject) }

// ToJSON exports each model with ToJSON.
func (ms Models) ToJSON() []map[string]any { return ms.export(TargetJSON) }

// ToDB exports each model with ToDB.
func (ms Models) ToDB() []map[string]any { return ms.export(TargetDB) }

// Validate validates every model and returns a *ModelValidationError keyed
// by index, or nil.
func (ms Models) Validate() error {
	errs := newModelValidationError()
	for i, m := range ms {
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			errs.add(strconv.Itoa(i), err)
		}
	}
	if errs.empty() {
		return nil
	}
	return errs
}

func (ms Models) export(t Target) []map[string]any {
	out := make([]map[string]any, 0, len(ms))
	for _, m := range ms {
		if m == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, m.exportMap(t))
	}
	return out
}

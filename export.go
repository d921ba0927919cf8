package minimodel

import (
	"math"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/minimodel/codec"
	"github.com/reoring/minimodel/internal/coerce"
)

// Target selects the export representation.
type Target int

const (
	// TargetObject keeps native values.
	TargetObject Target = iota
	// TargetJSON renders values for JSON encoding.
	TargetJSON
	// TargetDB renders values for storage drivers.
	TargetDB
	// TargetAll exports every field, virtual ones included, as native values.
	TargetAll
)

func (t Target) String() string {
	switch t {
	case TargetObject:
		return "object"
	case TargetJSON:
		return "json"
	case TargetDB:
		return "db"
	case TargetAll:
		return "all"
	}
	return "unknown"
}

// ParseTarget maps "object", "json", "db" and "all" to a Target.
func ParseTarget(s string) (Target, bool) {
	for _, t := range []Target{TargetObject, TargetJSON, TargetDB, TargetAll} {
		if t.String() == s {
			return t, true
		}
	}
	return TargetObject, false
}

// exportValue converts a leaf value for t. Maps, slices and arrays are
// copied so the export never aliases model state.
func exportValue(t Target, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *Model:
		if x == nil {
			return nil
		}
		return x.Export(t)
	case time.Time:
		if t == TargetJSON {
			return codec.EncodeDate(x)
		}
		return x
	case uuid.UUID:
		if t == TargetJSON || t == TargetDB {
			return x.String()
		}
		return x
	case float64:
		if (t == TargetJSON || t == TargetDB) && (math.IsNaN(x) || math.IsInf(x, 0)) {
			return nil
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = exportValue(t, e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = exportValue(t, e)
		}
		return out
	}
	return coerce.ClonePlain(v)
}

// ExportOrdered exports like Export but keeps canonical field order, for
// nested models too.
func (m *Model) ExportOrdered(t Target) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any](len(m.keys))
	for _, k := range m.keys {
		n := m.data[k]
		if n.Include(t) {
			om.Set(k, exportOrdered(n, t))
		}
	}
	return om
}

func exportOrdered(n Node, t Target) any {
	switch x := n.(type) {
	case *Model:
		return x.ExportOrdered(t)
	case *ArrayField:
		if x.desc.Get != nil || x.invalid != nil || x.items == nil {
			return x.Export(t)
		}
		out := make([]any, len(x.items))
		for i, it := range x.items {
			out[i] = exportOrdered(it, t)
		}
		return out
	}
	return n.Export(t)
}

// ToJSONBytes encodes the JSON export in canonical field order.
func (m *Model) ToJSONBytes() ([]byte, error) {
	return json.Marshal(m.ExportOrdered(TargetJSON))
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) { return m.ToJSONBytes() }

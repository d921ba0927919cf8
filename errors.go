package minimodel

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/minimodel/i18n"
)

// Error kinds and issue codes.
const (
	KindGeneric          = "generic"
	KindRequired         = "required"
	KindWrongType        = "wrong_type"
	CodeInvalidPath      = "invalid_path"
	CodeSchemaDefinition = "schema_definition"
)

// SchemaDefinitionError reports a field descriptor that cannot be resolved to
// a field type or nested model. It aborts schema compilation.
type SchemaDefinitionError struct {
	Path   string // dotted field path, e.g. "author.name"
	Reason string
}

func (e *SchemaDefinitionError) Error() string {
	msg := i18n.T(CodeSchemaDefinition, map[string]any{"path": e.Path})
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// within re-roots the error under a parent field name.
func (e *SchemaDefinitionError) within(parent string) *SchemaDefinitionError {
	p := parent
	if e.Path != "" {
		p += "." + e.Path
	}
	return &SchemaDefinitionError{Path: p, Reason: e.Reason}
}

// FieldValidationError is a single field's validation failure.
type FieldValidationError struct {
	Kind    string         // KindRequired, KindWrongType, KindGeneric, or a custom kind
	Params  map[string]any // message parameters, e.g. {"type": "Number"}
	Message string
	Cause   error
}

// NewFieldValidationError builds a FieldValidationError with its message
// rendered through the current translator.
func NewFieldValidationError(kind string, params map[string]any) *FieldValidationError {
	if kind == "" {
		kind = KindGeneric
	}
	return &FieldValidationError{Kind: kind, Params: params, Message: i18n.T(kind, params)}
}

func wrongType(typeName string) *FieldValidationError {
	return NewFieldValidationError(KindWrongType, map[string]any{"type": typeName})
}

func (e *FieldValidationError) Error() string { return e.Message }

func (e *FieldValidationError) Unwrap() error { return e.Cause }

// ModelValidationError aggregates the errors of a model's fields (keyed by
// field name) or of an array's elements (keyed by index).
type ModelValidationError struct {
	Errors map[string]error
	keys   []string
}

func newModelValidationError() *ModelValidationError {
	return &ModelValidationError{Errors: map[string]error{}}
}

func (e *ModelValidationError) add(key string, err error) {
	if _, dup := e.Errors[key]; !dup {
		e.keys = append(e.keys, key)
	}
	e.Errors[key] = err
}

func (e *ModelValidationError) empty() bool { return len(e.Errors) == 0 }

// Keys returns the failing keys in field (or index) order.
func (e *ModelValidationError) Keys() []string {
	if len(e.keys) == len(e.Errors) {
		return append([]string(nil), e.keys...)
	}
	// built by hand; fall back to a stable order
	ks := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (e *ModelValidationError) Error() string {
	b := &strings.Builder{}
	b.WriteString(i18n.T("model", nil))
	b.WriteString(" \n")
	for _, k := range e.Keys() {
		fmt.Fprintf(b, "%s: %s\n", k, e.Errors[k].Error())
	}
	return b.String()
}

// InvalidPathError reports a structurally invalid path segment, such as a
// non-numeric array index.
type InvalidPathError struct {
	Path    string
	Segment string
}

func (e *InvalidPathError) Error() string {
	msg := i18n.T(CodeInvalidPath, map[string]any{"segment": strconv.Quote(e.Segment)})
	if e.Path != "" && e.Path != e.Segment {
		msg += " in " + strconv.Quote(e.Path)
	}
	return msg
}

// Issue is a flattened validation failure addressed by JSON Pointer.
type Issue struct {
	Path    string // JSON Pointer (for example: /comments/1/astring).
	Code    string
	Message string
	Params  map[string]any
	Cause   error
}

// Issues is a collection of flattened validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssuesOf flattens a validation error tree into Issues in field order.
// Errors that are neither model nor field validation errors become a
// generic issue at their position.
func IssuesOf(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	var out Issues
	flattenIssues(rootRef(), err, &out)
	return out
}

func flattenIssues(at PathRef, err error, out *Issues) {
	var mve *ModelValidationError
	if errors.As(err, &mve) {
		for _, k := range mve.Keys() {
			flattenIssues(at.Field(k), mve.Errors[k], out)
		}
		return
	}
	var fve *FieldValidationError
	if errors.As(err, &fve) {
		*out = append(*out, Issue{Path: at.Pointer(), Code: fve.Kind, Message: fve.Message, Params: fve.Params, Cause: fve.Cause})
		return
	}
	*out = append(*out, at.Issue(KindGeneric, err.Error()))
}

package minimodel

import (
	"strings"

	"github.com/rs/zerolog"
)

// Parsed is a compiled field descriptor: the resolved type plus the
// normalized descriptor every instance of the field is built from.
type Parsed struct {
	Typed      Type
	Normalized *Descriptor
}

// Schema is the compiled, ordered field table of a model type.
type Schema struct {
	keys       []string
	typed      map[string]Type
	normalized map[string]*Descriptor
}

func newSchema() *Schema {
	return &Schema{typed: map[string]Type{}, normalized: map[string]*Descriptor{}}
}

// Keys returns the field names in canonical order.
func (s *Schema) Keys() []string { return append([]string(nil), s.keys...) }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.keys) }

// Typed returns the compiled type of a field.
func (s *Schema) Typed(name string) (Type, bool) {
	t, ok := s.typed[name]
	return t, ok
}

// Normalized returns the normalized descriptor of a field.
func (s *Schema) Normalized(name string) (*Descriptor, bool) {
	d, ok := s.normalized[name]
	return d, ok
}

// put adds a field, or replaces it in place keeping its position.
func (s *Schema) put(name string, p Parsed) bool {
	_, exists := s.typed[name]
	if !exists {
		s.keys = append(s.keys, name)
	}
	s.typed[name] = p.Typed
	s.normalized[name] = p.Normalized
	return exists
}

// CompilerOpt configures a Compiler.
type CompilerOpt struct {
	// Registry resolves markers to field types. nil means DefaultRegistry().
	Registry *Registry
	// Logger receives compile diagnostics. nil means a disabled logger.
	Logger *zerolog.Logger
}

// Compiler turns descriptor mappings into model types. A Compiler is not
// safe for concurrent use while its registry is being changed.
type Compiler struct {
	registry *Registry
	log      zerolog.Logger
}

// NewCompiler returns a compiler using opt.
func NewCompiler(opt CompilerOpt) *Compiler {
	c := &Compiler{registry: opt.Registry, log: zerolog.Nop()}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	if opt.Logger != nil {
		c.log = *opt.Logger
	}
	return c
}

var defaultCompiler = NewCompiler(CompilerOpt{})

// Compile compiles fields with the built-in field types.
func Compile(fields Fields) (*ModelType, error) { return defaultCompiler.Compile(fields) }

// MustCompile is like Compile but panics on a schema definition error.
func MustCompile(fields Fields) *ModelType { return defaultCompiler.MustCompile(fields) }

// Registry returns the compiler's registry. Types registered on it affect
// later compilations only.
func (c *Compiler) Registry() *Registry { return c.registry }

// Compile compiles fields into a model type.
func (c *Compiler) Compile(fields Fields) (*ModelType, error) {
	s, err := c.parseSchema(fields)
	if err != nil {
		return nil, err
	}
	return &ModelType{compiler: c, schema: s}, nil
}

// MustCompile is like Compile but panics on a schema definition error.
func (c *Compiler) MustCompile(fields Fields) *ModelType {
	mt, err := c.Compile(fields)
	if err != nil {
		panic(err)
	}
	return mt
}

// ParseSchema compiles every entry of fields in order.
func (c *Compiler) ParseSchema(fields Fields) (*Schema, error) {
	s, err := c.parseSchema(fields)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseField compiles a single field descriptor.
func (c *Compiler) ParseField(desc any) (Parsed, error) {
	p, _, err := c.parseField(desc)
	if err != nil {
		return Parsed{}, err
	}
	return p, nil
}

// Resolution steps, in priority order.
const (
	stepTypeRef = iota + 1
	stepDescType
	stepMarker
	stepOptions
	stepNested
	stepFailed
)

func (c *Compiler) parseSchema(fields Fields) (*Schema, *SchemaDefinitionError) {
	s := newSchema()
	for _, e := range fields {
		if e.Name == "" || strings.Contains(e.Name, ".") {
			return nil, &SchemaDefinitionError{Path: e.Name, Reason: "field names must be non-empty and must not contain '.'"}
		}
		p, step, err := c.parseField(e.Desc)
		if err != nil {
			return nil, err.within(e.Name)
		}
		if step == stepNested {
			if _, hasType := e.Desc.(Fields).Lookup("type"); hasType {
				c.log.Warn().Str("field", e.Name).Msg("mapping with a \"type\" entry compiled as nested model")
			}
		}
		if s.put(e.Name, p) {
			c.log.Debug().Str("field", e.Name).Msg("duplicate field name, later descriptor wins")
		}
		c.log.Debug().Str("field", e.Name).Str("type", p.Typed.Name()).Int("step", step).Msg("field resolved")
	}
	return s, nil
}

// parseField resolves desc and reports which step resolved it. Error paths
// are relative to the field.
func (c *Compiler) parseField(desc any) (Parsed, int, *SchemaDefinitionError) {
	// 1: bare type reference
	if t, ok := typeRef(desc); ok {
		return Parsed{Typed: t, Normalized: &Descriptor{Type: t}}, stepTypeRef, nil
	}
	// 2: options descriptor whose type is a type reference
	if inner, ok := typeOf(desc); ok {
		if t, ok := typeRef(inner); ok {
			d := asDescriptor(desc)
			d.Type = t
			return Parsed{Typed: t, Normalized: d}, stepDescType, nil
		}
	}
	// 3: desc itself is a marker
	if desc != nil {
		d := &Descriptor{Type: desc}
		if t := c.registry.Resolve(d); t != nil {
			if err := c.prepare(t, d); err != nil {
				return Parsed{}, stepMarker, err
			}
			return Parsed{Typed: t, Normalized: d}, stepMarker, nil
		}
	}
	// 4: desc carries a marker in its type plus options
	switch desc.(type) {
	case Descriptor, *Descriptor, Fields:
		d := asDescriptor(desc)
		if t := c.registry.Resolve(d); t != nil {
			if err := c.prepare(t, d); err != nil {
				return Parsed{}, stepOptions, err
			}
			return Parsed{Typed: t, Normalized: d}, stepOptions, nil
		}
	}
	// 5: any other non-empty mapping is an implicit nested model
	if fs, ok := desc.(Fields); ok && len(fs) > 0 {
		s, err := c.parseSchema(fs)
		if err != nil {
			return Parsed{}, stepNested, err
		}
		mt := &ModelType{compiler: c, schema: s}
		return Parsed{Typed: mt, Normalized: &Descriptor{Type: mt, Source: append(Fields(nil), fs...)}}, stepNested, nil
	}
	return Parsed{}, stepFailed, &SchemaDefinitionError{}
}

func (c *Compiler) prepare(t FieldType, d *Descriptor) *SchemaDefinitionError {
	p, ok := t.(Preparer)
	if !ok {
		return nil
	}
	err := p.Prepare(c, d)
	if err == nil {
		return nil
	}
	if sde, ok := err.(*SchemaDefinitionError); ok {
		return sde
	}
	return &SchemaDefinitionError{Reason: err.Error()}
}

// typeRef reports whether desc is already a compiled type.
func typeRef(desc any) (Type, bool) {
	switch t := desc.(type) {
	case *ModelType:
		return t, t != nil
	case FieldType:
		return t, t != nil
	}
	return nil, false
}

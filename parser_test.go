package minimodel_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reoring/minimodel"
)

func expectSchemaError(t *testing.T, fields minimodel.Fields, path string) {
	t.Helper()
	_, err := minimodel.Compile(fields)
	var sde *minimodel.SchemaDefinitionError
	if !errors.As(err, &sde) {
		t.Fatalf("expected SchemaDefinitionError, got %T %v", err, err)
	}
	if sde.Path != path {
		t.Fatalf("path: got %q want %q", sde.Path, path)
	}
	if !strings.Contains(err.Error(), "Invalid field") {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestCompile_WrongDescriptors(t *testing.T) {
	expectSchemaError(t, minimodel.Fields{{"id", minimodel.Fields{}}}, "id")
	expectSchemaError(t, minimodel.Fields{{"id", nil}}, "id")
	expectSchemaError(t, minimodel.Fields{{"id", minimodel.Fields{{"type", nil}}}}, "id.type")
	expectSchemaError(t, minimodel.Fields{{"id", minimodel.Fields{
		{"type", minimodel.Fields{{"type", minimodel.Fields{{"type", minimodel.Fields{}}}}}},
	}}}, "id.type.type.type")
	expectSchemaError(t, minimodel.Fields{{"id", 42}}, "id")
	expectSchemaError(t, minimodel.Fields{{"tags", []any{minimodel.Fields{}}}}, "tags.0")
}

func TestCompile_DescriptorWithMappingTypeIsAnError(t *testing.T) {
	expectSchemaError(t, minimodel.Fields{
		{"n", minimodel.Descriptor{Type: minimodel.Fields{{"a", minimodel.String}}}},
	}, "n")
}

func TestCompile_RejectsDottedNames(t *testing.T) {
	_, err := minimodel.Compile(minimodel.Fields{{"a.b", minimodel.String}})
	var sde *minimodel.SchemaDefinitionError
	if !errors.As(err, &sde) {
		t.Fatalf("expected SchemaDefinitionError, got %T %v", err, err)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	minimodel.MustCompile(minimodel.Fields{{"id", minimodel.Fields{}}})
}

func TestParseField_ResolutionOrder(t *testing.T) {
	c := minimodel.NewCompiler(minimodel.CompilerOpt{})
	cases := []struct {
		name string
		desc any
		want string
	}{
		{"type reference", minimodel.NumberType, "Number"},
		{"descriptor with type reference", minimodel.Descriptor{Type: minimodel.VirtualType}, "Virtual"},
		{"marker", minimodel.Boolean, "Boolean"},
		{"mapping with marker", minimodel.Fields{{"type", minimodel.Date}, {"required", true}}, "Date"},
		{"array marker", []any{minimodel.String}, "Array"},
		{"nested", minimodel.Fields{{"a", minimodel.String}}, "Model"},
		{"uuid", minimodel.UUID, "UUID"},
	}
	for _, tc := range cases {
		p, err := c.ParseField(tc.desc)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.name, err)
		}
		if got := p.Typed.Name(); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
		if p.Normalized == nil {
			t.Fatalf("%s: missing normalized descriptor", tc.name)
		}
	}
}

func TestParseField_NormalizesOptions(t *testing.T) {
	c := minimodel.NewCompiler(minimodel.CompilerOpt{})
	p, err := c.ParseField(minimodel.Fields{
		{"type", minimodel.String},
		{"required", true},
		{"default", "x"},
		{"includeInJson", false},
		{"label", "Title"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	d := p.Normalized
	if !d.Required || d.Default != "x" || d.IncludeInJSON == nil || d.IncludeInJSON(nil) {
		t.Fatalf("normalized: %+v", d)
	}
	if d.Options["label"] != "Title" {
		t.Fatalf("options: %#v", d.Options)
	}
}

func TestParseField_DoesNotMutateInput(t *testing.T) {
	c := minimodel.NewCompiler(minimodel.CompilerOpt{})
	in := &minimodel.Descriptor{Type: minimodel.String, Required: true}
	p, err := c.ParseField(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	p.Normalized.Required = false
	if !in.Required {
		t.Fatalf("normalized descriptor aliases the input")
	}
}

func TestCompile_Deterministic(t *testing.T) {
	fields := minimodel.Fields{
		{"b", minimodel.String},
		{"a", []any{minimodel.Number}},
		{"c", minimodel.Fields{{"y", minimodel.Date}, {"x", minimodel.Boolean}}},
	}
	m1 := minimodel.MustCompile(fields)
	m2 := minimodel.MustCompile(fields)
	k1, k2 := m1.Schema().Keys(), m2.Schema().Keys()
	if strings.Join(k1, ",") != strings.Join(k2, ",") || strings.Join(k1, ",") != "b,a,c" {
		t.Fatalf("keys: %v %v", k1, k2)
	}
	for _, k := range k1 {
		t1, _ := m1.Schema().Typed(k)
		t2, _ := m2.Schema().Typed(k)
		if t1.Name() != t2.Name() {
			t.Fatalf("%s: %s vs %s", k, t1.Name(), t2.Name())
		}
	}
}

// upperType is a custom field type resolved from its own marker.
type upperType struct{}

const Upper minimodel.Marker = "Upper"

func (upperType) Name() string                         { return "Upper" }
func (upperType) Matches(d *minimodel.Descriptor) bool { return d.Type == Upper }

func (t upperType) New(d *minimodel.Descriptor, m *minimodel.Model) minimodel.Node {
	return minimodel.NewField(t, d, m, minimodel.FieldOpt{
		Cast: func(_ *minimodel.Field, v any) any {
			if s, ok := v.(string); ok {
				return strings.ToUpper(s)
			}
			return v
		},
	})
}

func TestCompiler_CustomRegistry(t *testing.T) {
	c := minimodel.NewCompiler(minimodel.CompilerOpt{Registry: minimodel.DefaultRegistry().Register(upperType{})})
	M, err := c.Compile(minimodel.Fields{{"code", Upper}, {"name", minimodel.String}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	m := M.MustNew(map[string]any{"code": "abc", "name": "abc"})
	if got := mustGet(t, m, "code"); got != "ABC" {
		t.Fatalf("code: got %#v", got)
	}
	if got := mustGet(t, m, "name"); got != "abc" {
		t.Fatalf("name: got %#v", got)
	}

	// the default compiler does not know the marker
	if _, err := minimodel.Compile(minimodel.Fields{{"code", Upper}}); err == nil {
		t.Fatalf("expected default registry to reject custom marker")
	}
}

func TestCompiler_PrependOverridesBuiltin(t *testing.T) {
	r := minimodel.DefaultRegistry().Prepend(stringAsAny{})
	c := minimodel.NewCompiler(minimodel.CompilerOpt{Registry: r})
	p, err := c.ParseField(minimodel.String)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Typed.Name() != "StringAsAny" {
		t.Fatalf("got %s", p.Typed.Name())
	}
	if n := len(minimodel.DefaultRegistry().Types()); n != 6 {
		t.Fatalf("default registry leaked: %d types", n)
	}
}

type stringAsAny struct{}

func (stringAsAny) Name() string                         { return "StringAsAny" }
func (stringAsAny) Matches(d *minimodel.Descriptor) bool { return d.Type == minimodel.String }

func (t stringAsAny) New(d *minimodel.Descriptor, m *minimodel.Model) minimodel.Node {
	return minimodel.NewField(t, d, m, minimodel.FieldOpt{})
}

func TestCompiler_LogsNestedTypeFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.WarnLevel)
	c := minimodel.NewCompiler(minimodel.CompilerOpt{Logger: &logger})
	_, err := c.Compile(minimodel.Fields{
		{"nested", minimodel.Fields{
			{"type", minimodel.Fields{{"type", minimodel.String}}},
			{"hello", minimodel.String},
		}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(buf.String(), `"field":"nested"`) {
		t.Fatalf("expected warn log for nested, got %q", buf.String())
	}
}

func TestParseField_NestedKeepsSource(t *testing.T) {
	src := minimodel.Fields{{"a", minimodel.String}, {"b", minimodel.Number}}
	p, err := minimodel.NewCompiler(minimodel.CompilerOpt{}).ParseField(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := p.Typed.(*minimodel.ModelType); !ok {
		t.Fatalf("typed: got %T", p.Typed)
	}
	if got := strings.Join(p.Normalized.Source.Names(), ","); got != "a,b" {
		t.Fatalf("source names: %q", got)
	}
	src[0].Name = "changed"
	if p.Normalized.Source[0].Name != "a" {
		t.Fatalf("source aliases the input mapping")
	}
}

func TestCompiler_LogsRejectedDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.WarnLevel)
	c := minimodel.NewCompiler(minimodel.CompilerOpt{Logger: &logger})
	M := c.MustCompile(minimodel.Fields{
		{"code", minimodel.Descriptor{
			Type:    minimodel.String,
			Default: "x",
			Set:     func(*minimodel.Field, any) error { return errors.New("read-only") },
		}},
	})
	m, err := M.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(buf.String(), "default not applied") || !strings.Contains(buf.String(), "read-only") {
		t.Fatalf("expected warn log for rejected default, got %q", buf.String())
	}
	if got := mustGet(t, m, "code"); got != nil {
		t.Fatalf("code: got %#v", got)
	}
}

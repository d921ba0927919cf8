// Package minimodel compiles declarative field descriptors into model types
// whose instances cast, validate and export their values.
//
// A schema is an ordered Fields mapping. Each descriptor is a marker
// (String, Number, Boolean, Date, UUID), a type reference (StringType,
// VirtualType, a *ModelType), a Descriptor with options, a one-element
// []any array marker, or a nested Fields mapping:
//
//	Post := minimodel.MustCompile(minimodel.Fields{
//		{"title", minimodel.Descriptor{Type: minimodel.String, Required: true}},
//		{"created", minimodel.Date},
//		{"author", minimodel.Fields{{"name", minimodel.String}}},
//		{"comments", []any{minimodel.Fields{{"text", minimodel.String}}}},
//	})
//
//	p, err := Post.New(map[string]any{"title": "hello", "created": "2024-01-02T03:04:05Z"})
//	err = p.Set("comments.0.text", "first")
//	err = p.Validate() // nil or *ModelValidationError
//	out := p.ToJSON()
//
// Design policy:
//   - Keep the public API in the root package; helpers live under internal/.
//   - Dates are parsed and formatted by codec/; messages come from i18n/.
//   - YAML schemas are loaded by yamlschema/, and cmd/minimodel is the CLI.
//   - Prefer black-box testing against public APIs.
package minimodel

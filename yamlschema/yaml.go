// Package yamlschema loads minimodel schemas written in YAML. Mapping order
// in the document becomes field order.
//
//	title: {type: String, required: true}
//	created: Date
//	author:
//	  name: String
//	comments: [{text: String}]
package yamlschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/minimodel"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// SyntaxError reports a node that is not a valid descriptor.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("yamlschema: %s at %d:%d", e.Msg, e.Line, e.Col)
}

// typeNames maps scalar type names to descriptors.
var typeNames = map[string]any{
	"String":  minimodel.String,
	"Number":  minimodel.Number,
	"Boolean": minimodel.Boolean,
	"Date":    minimodel.Date,
	"UUID":    minimodel.UUID,
	"Virtual": minimodel.VirtualType,
	"Any":     minimodel.AnyType,
}

// optionKeys hold plain values rather than descriptors.
var optionKeys = map[string]bool{
	"required":        true,
	"default":         true,
	"includeInObject": true,
	"includeInJson":   true,
	"includeInJSON":   true,
	"includeInDb":     true,
	"includeInDB":     true,
}

// uuidTag marks a default that generates a fresh UUID: `default: !uuid`.
// In flow style the tag needs a separator before the closing brace:
// `{type: UUID, default: !uuid }`.
const uuidTag = "!uuid"

// Load decodes the first YAML document in data into a Fields mapping.
func Load(data []byte) (minimodel.Fields, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return minimodel.Fields{}, nil
		}
		return nil, err
	}
	n := &root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return minimodel.Fields{}, nil
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, &SyntaxError{Line: n.Line, Col: n.Column, Msg: "schema root must be a mapping"}
	}
	return mappingToFields(n)
}

// Compile loads data and compiles it with c, or with the default compiler
// when c is nil.
func Compile(c *minimodel.Compiler, data []byte) (*minimodel.ModelType, error) {
	fields, err := Load(data)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return minimodel.Compile(fields)
	}
	return c.Compile(fields)
}

func mappingToFields(n *yaml.Node) (minimodel.Fields, error) {
	fields := make(minimodel.Fields, 0, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		v := n.Content[i+1]
		key := k.Value
		if pos, dup := first[key]; dup {
			return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[key] = [2]int{k.Line, k.Column}
		var (
			desc any
			err  error
		)
		if optionKeys[key] {
			desc, err = nodeToValue(v)
		} else {
			desc, err = nodeToDescriptor(v)
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, minimodel.Entry{Name: key, Desc: desc})
	}
	return fields, nil
}

func nodeToDescriptor(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeToDescriptor(n.Alias)
	case yaml.MappingNode:
		return mappingToFields(n)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return nil, &SyntaxError{Line: n.Line, Col: n.Column, Msg: "array descriptor must hold exactly one element type"}
		}
		elem, err := nodeToDescriptor(n.Content[0])
		if err != nil {
			return nil, err
		}
		return []any{elem}, nil
	case yaml.ScalarNode:
		if t, ok := typeNames[n.Value]; ok {
			return t, nil
		}
		return nil, &SyntaxError{Line: n.Line, Col: n.Column, Msg: "unknown type " + strconv.Quote(n.Value)}
	}
	return nil, &SyntaxError{Line: n.Line, Col: n.Column, Msg: "unsupported node"}
}

// nodeToValue converts an option value into a JSON-like Go value.
func nodeToValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case uuidTag:
			return minimodel.NewUUID, nil
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err == nil {
				return b, nil
			}
			return n.Value, nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err == nil {
				return f, nil
			}
			return n.Value, nil
		default:
			return n.Value, nil
		}
	}
	return nil, nil
}

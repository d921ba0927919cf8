// Package jsondoc inspects raw JSON documents before they are decoded into
// maps, where repeated object keys would otherwise be silently collapsed.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Duplicate is a repeated key inside one JSON object.
type Duplicate struct {
	Path string // JSON Pointer of the object holding the key
	Key  string
}

func (d Duplicate) String() string {
	return fmt.Sprintf("duplicate key %q at %s", d.Key, d.Path)
}

type frame struct {
	object    bool
	keys      map[string]struct{}
	wantKey   bool
	seg       string // segment of this container within its parent
	key       string // current member key (objects)
	index     int    // next element index (arrays)
	hasMember bool
}

// DuplicateKeys scans data and reports repeated object keys in document
// order. limit <= 0 means unlimited. Malformed JSON is returned as an error.
func DuplicateKeys(data []byte, limit int) ([]Duplicate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		out   []Duplicate
		stack []*frame
	)
	// childSeg returns the segment of the next value in the top container.
	childSeg := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := stack[len(stack)-1]
		if top.object {
			return top.key
		}
		return strconv.Itoa(top.index)
	}
	// valueDone advances the top container past one value.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.wantKey = true
		} else {
			top.index++
		}
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return out, io.ErrUnexpectedEOF
			}
			return out, nil
		}
		if err != nil {
			return out, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				f := &frame{object: v == '{', seg: childSeg(), wantKey: v == '{'}
				if f.object {
					f.keys = map[string]struct{}{}
				}
				stack = append(stack, f)
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
				top := stack[n-1]
				if _, dup := top.keys[v]; dup {
					out = append(out, Duplicate{Path: pointer(stack), Key: v})
					if limit > 0 && len(out) >= limit {
						return out, nil
					}
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.wantKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// pointer renders the JSON Pointer of the top container.
func pointer(stack []*frame) string {
	if len(stack) <= 1 {
		return "/"
	}
	b := &strings.Builder{}
	for _, f := range stack[1:] {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(f.seg, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

package minimodel_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/minimodel"
)

func nestedPost(t *testing.T) *minimodel.ModelType {
	t.Helper()
	return minimodel.MustCompile(minimodel.Fields{
		{"nr", minimodel.Number},
		{"nested", minimodel.Fields{{"obj", minimodel.String}}},
	})
}

func TestExport_ConcreteFields(t *testing.T) {
	post := nestedPost(t).MustNew(map[string]any{"nr": "7", "nested": map[string]any{"obj": "a"}})
	if post.ToJSON()["nr"] != 7.0 || post.ToObject()["nr"] != 7.0 || post.ToDB()["nr"] != 7.0 {
		t.Fatalf("nr export: %#v", post.ToObject())
	}
	if post.ToObject()["nested"].(map[string]any)["obj"] != "a" {
		t.Fatalf("nested export: %#v", post.ToObject())
	}
}

func TestExport_DoesNotAlias(t *testing.T) {
	post := nestedPost(t).MustNew(map[string]any{"nr": "7", "nested": map[string]any{"obj": "a"}})
	obj := post.ToJSON()
	obj["nested"].(map[string]any)["obj"] = "b"
	if got := mustGet(t, post, "nested.obj"); got != "a" {
		t.Fatalf("export aliases model: %#v", got)
	}
}

func TestExport_TypedContainersDoNotAlias(t *testing.T) {
	M := minimodel.MustCompile(minimodel.Fields{
		{"tags", minimodel.AnyType},
		{"meta", minimodel.AnyType},
	})
	tags := []string{"a", "b"}
	meta := map[string]string{"k": "v"}
	m := M.MustNew(map[string]any{"tags": tags, "meta": meta})

	tags[0] = "caller"
	meta["k"] = "caller"
	for _, obj := range []map[string]any{m.ToObject(), m.ToJSON(), m.ToDB()} {
		obj["tags"].([]string)[1] = "export"
		obj["meta"].(map[string]string)["k"] = "export"
	}

	gotTags := mustGet(t, m, "tags").([]string)
	if gotTags[0] != "a" || gotTags[1] != "b" {
		t.Fatalf("tags aliased: %v", gotTags)
	}
	if got := mustGet(t, m, "meta").(map[string]string); got["k"] != "v" {
		t.Fatalf("meta aliased: %v", got)
	}
}

func TestExport_NestedModelInclusion(t *testing.T) {
	Inner := minimodel.MustCompile(minimodel.Fields{{"x", minimodel.String}})
	M := minimodel.MustCompile(minimodel.Fields{
		{"in", minimodel.Descriptor{Type: Inner, IncludeInJSON: minimodel.Flag(false)}},
		{"db", minimodel.Descriptor{Type: Inner, IncludeInDB: func(f *minimodel.Field) bool {
			inner := f.Value().(*minimodel.Model)
			x, _ := inner.Get("x")
			return x != nil
		}}},
	})
	m := M.MustNew(nil)
	if _, ok := m.ToJSON()["in"]; ok {
		t.Fatalf("json export includes nested model: %#v", m.ToJSON())
	}
	if _, ok := m.ToObject()["in"]; !ok {
		t.Fatalf("object export misses nested model: %#v", m.ToObject())
	}
	if _, ok := m.ExportOrdered(minimodel.TargetJSON).Get("in"); ok {
		t.Fatalf("ordered json export includes nested model")
	}
	if _, ok := m.ToDB()["db"]; ok {
		t.Fatalf("db export includes empty nested model")
	}
	_ = m.Set("db.x", "set")
	if _, ok := m.ToDB()["db"]; !ok {
		t.Fatalf("db export misses nested model: %#v", m.ToDB())
	}
}

func TestExport_IncludeFlags(t *testing.T) {
	M := minimodel.MustCompile(minimodel.Fields{
		{"visits", minimodel.Descriptor{Type: minimodel.Number, Default: 0, IncludeInJSON: minimodel.Flag(false)}},
		{"secret", minimodel.Descriptor{Type: minimodel.String, IncludeInObject: minimodel.Flag(false)}},
		{"computed", minimodel.Descriptor{Type: minimodel.String, IncludeInDB: func(f *minimodel.Field) bool {
			return f.Value() != "skip"
		}}},
	})
	m := M.MustNew(map[string]any{"secret": "s", "computed": "skip"})
	if _, ok := m.ToJSON()["visits"]; ok {
		t.Fatalf("json export includes visits")
	}
	if m.ToObject()["visits"] != 0.0 {
		t.Fatalf("object export: %#v", m.ToObject())
	}
	if _, ok := m.ToObject()["secret"]; ok {
		t.Fatalf("object export includes secret")
	}
	if _, ok := m.ToDB()["computed"]; ok {
		t.Fatalf("db export includes computed")
	}
	_ = m.Set("computed", "keep")
	if m.ToDB()["computed"] != "keep" {
		t.Fatalf("db export: %#v", m.ToDB())
	}
}

func TestExport_TargetConversions(t *testing.T) {
	M := minimodel.MustCompile(minimodel.Fields{
		{"at", minimodel.Date},
		{"id", minimodel.UUID},
		{"n", minimodel.Number},
	})
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	m := M.MustNew(map[string]any{"at": at, "id": id.String(), "n": "x"})

	obj := m.ToObject()
	if obj["at"] != at || obj["id"] != id || !math.IsNaN(obj["n"].(float64)) {
		t.Fatalf("object export: %#v", obj)
	}
	js := m.ToJSON()
	if js["at"] != "2024-01-02T03:04:05Z" || js["id"] != id.String() || js["n"] != nil {
		t.Fatalf("json export: %#v", js)
	}
	db := m.ToDB()
	if db["at"] != at || db["id"] != id.String() || db["n"] != nil {
		t.Fatalf("db export: %#v", db)
	}
}

func TestExport_OrderedAndJSONBytes(t *testing.T) {
	M := minimodel.MustCompile(minimodel.Fields{
		{"z", minimodel.String},
		{"a", minimodel.Fields{{"y", minimodel.Number}, {"b", minimodel.Number}}},
		{"list", []any{minimodel.Fields{{"q", minimodel.String}, {"c", minimodel.String}}}},
	})
	m := M.MustNew(map[string]any{
		"z":    "1",
		"a":    map[string]any{"y": 2, "b": 3},
		"list": []any{map[string]any{"q": "x", "c": "y"}},
	})
	om := m.ExportOrdered(minimodel.TargetJSON)
	keys := []string{}
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	if strings.Join(keys, ",") != "z,a,list" {
		t.Fatalf("keys: %v", keys)
	}
	b, err := m.ToJSONBytes()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"z":"1","a":{"y":2,"b":3},"list":[{"q":"x","c":"y"}]}`
	if string(b) != want {
		t.Fatalf("json: got %s want %s", b, want)
	}
}

func TestParseTarget(t *testing.T) {
	for _, s := range []string{"object", "json", "db", "all"} {
		tg, ok := minimodel.ParseTarget(s)
		if !ok || tg.String() != s {
			t.Fatalf("%s: got %v %v", s, tg, ok)
		}
	}
	if _, ok := minimodel.ParseTarget("xml"); ok {
		t.Fatalf("expected unknown target")
	}
}

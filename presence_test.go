package minimodel_test

import (
	"testing"

	"github.com/reoring/minimodel"
)

func TestPresence_SeenAndDefaulted(t *testing.T) {
	M := minimodel.MustCompile(minimodel.Fields{
		{"id", minimodel.String},
		{"nick", minimodel.Descriptor{Type: minimodel.String, Default: "anon"}},
		{"bio", minimodel.String},
		{"author", minimodel.Fields{{"name", minimodel.String}}},
		{"tags", []any{minimodel.String}},
	})
	m := M.MustNew(map[string]any{
		"id":     "u1",
		"author": map[string]any{"name": "ann"},
		"tags":   []any{"a"},
	})
	pm := m.Presence()
	if !pm.Has("/id", minimodel.PresenceSeen) {
		t.Fatalf("id should be seen: %v", pm)
	}
	if !pm.Has("/nick", minimodel.PresenceDefaultApplied) || pm.Has("/nick", minimodel.PresenceSeen) {
		t.Fatalf("nick should be defaulted only: %v", pm)
	}
	if _, ok := pm["/bio"]; ok {
		t.Fatalf("bio should be absent: %v", pm)
	}
	if !pm.Has("/author/name", minimodel.PresenceSeen) {
		t.Fatalf("author.name should be seen: %v", pm)
	}
	if !pm.Has("/tags", minimodel.PresenceSeen) || !pm.Has("/tags/0", minimodel.PresenceSeen) {
		t.Fatalf("tags should be seen: %v", pm)
	}
}

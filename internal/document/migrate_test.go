package document

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const legacyPayload = `{
  "meta": {"sectionLabel": "Services", "adminLink": "http://x/admin"},
  "hero": {"title": "Portal", "description": "", "chips": ["a"]},
  "services": [
    {"title": "Grafana", "status": "up", "description": "dashboards", "meta": ["ops"], "linkLabel": "open", "linkUrl": "http://g"},
    {"title": "Bare"}
  ],
  "quick": {"title": "Cheat sheet", "firstUse": ["step one", "step two"], "issues": []},
  "footer": "bye"
}`

func decodePayload(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMigrateLegacy(t *testing.T) {
	got := MigrateLegacy(decodePayload(t, legacyPayload))

	if _, ok := got["services"]; ok {
		t.Error("services key should be removed")
	}
	if _, ok := got["quick"]; ok {
		t.Error("quick key should be removed")
	}

	data, _ := json.Marshal(got)
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode migrated: %v", err)
	}

	want := Sections{
		&CardSection{Kind: KindCardsHorizontal, Heading: "Services", Cards: []Card{
			{Title: "Grafana", Status: "up", Content: "dashboards", Meta: Lines{"ops"}, LinkLabel: "open", LinkURL: "http://g"},
			{Title: "Bare"},
		}},
		&CardSection{Kind: KindCardsVertical, Heading: "Cheat sheet", Cards: []Card{
			{Title: "第一次使用", Content: "step one\nstep two"},
		}},
	}
	if diff := cmp.Diff(want, doc.Sections, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	if doc.Footer != "bye" || doc.Hero == nil || doc.Hero.Title != "Portal" {
		t.Errorf("unrelated fields changed: %#v", doc)
	}
}

func TestMigrateLegacy_Idempotent(t *testing.T) {
	once := MigrateLegacy(decodePayload(t, legacyPayload))
	onceJSON, _ := json.Marshal(once)

	twice := MigrateLegacy(decodePayload(t, string(onceJSON)))
	twiceJSON, _ := json.Marshal(twice)

	if string(onceJSON) != string(twiceJSON) {
		t.Errorf("second migration changed payload:\n%s\n%s", onceJSON, twiceJSON)
	}
}

func TestMigrateLegacy_SectionsShortCircuit(t *testing.T) {
	p := decodePayload(t, `{"sections": [], "services": [{"title": "kept"}]}`)
	got := MigrateLegacy(p)
	if _, ok := got["services"]; !ok {
		t.Error("payload with sections must be returned unchanged")
	}
}

func TestMigrateLegacy_NoQuickSectionWhenEmpty(t *testing.T) {
	got := MigrateLegacy(decodePayload(t, `{"quick": {"firstUse": [], "issues": []}}`))
	sections, _ := got["sections"].([]any)
	if len(sections) != 0 {
		t.Errorf("sections = %v, want none", sections)
	}
}

func TestLoadLegacy_Snapshot(t *testing.T) {
	snap := `{"pages": {
	  "zeta": {"title": "Z", "data": {"meta": {"sectionLabel": "first"}, "sections": [], "footer": ""}},
	  "alpha": {"title": "A", "data": {"meta": {"sectionLabel": "second"}, "sections": [], "footer": ""}}
	}}`
	doc, err := LoadLegacy([]byte(snap))
	if err != nil {
		t.Fatalf("LoadLegacy: %v", err)
	}
	if doc.Meta.SectionLabel != "first" {
		t.Errorf("section label = %q, want the first page in file order", doc.Meta.SectionLabel)
	}
}

func TestLoadLegacy_BareLegacyDocument(t *testing.T) {
	doc, err := LoadLegacy([]byte(legacyPayload))
	if err != nil {
		t.Fatalf("LoadLegacy: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2", len(doc.Sections))
	}
}

func TestLoadLegacy_Invalid(t *testing.T) {
	if _, err := LoadLegacy([]byte("not json")); err == nil {
		t.Error("expected error for invalid seed")
	}
}

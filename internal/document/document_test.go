package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseSectionKind(t *testing.T) {
	for _, k := range SectionKinds {
		if got := ParseSectionKind(string(k)); got != k {
			t.Errorf("ParseSectionKind(%q) = %q", k, got)
		}
	}
	for _, s := range []string{"", "cards", "TEXT_PLAIN", "gallery"} {
		if got := ParseSectionKind(s); got != KindTextPlain {
			t.Errorf("ParseSectionKind(%q) = %q, want text_plain", s, got)
		}
	}
}

func TestDefaultSection(t *testing.T) {
	text, ok := DefaultSection("bogus").(*TextSection)
	if !ok || text.Kind != KindTextPlain {
		t.Fatalf("DefaultSection(bogus) = %#v, want text_plain text section", text)
	}

	cards, ok := DefaultSection(KindCardsVertical).(*CardSection)
	if !ok {
		t.Fatal("DefaultSection(cards_vertical) is not a card section")
	}
	if len(cards.Cards) != 1 {
		t.Fatalf("len(cards) = %d, want 1", len(cards.Cards))
	}
	if diff := cmp.Diff(DefaultCard(), cards.Cards[0]); diff != "" {
		t.Errorf("default card mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPageDocument(t *testing.T) {
	doc := NewPageDocument("About")
	if doc.Hero == nil || doc.Hero.Title != "About" {
		t.Fatalf("hero = %#v, want title About", doc.Hero)
	}
	if doc.Meta.AdminLink != DefaultAdminLink {
		t.Errorf("admin link = %q", doc.Meta.AdminLink)
	}
	if len(doc.Sections) != 0 || doc.Footer != "" {
		t.Errorf("new document should have no sections and no footer: %#v", doc)
	}
	if got := NewPageDocument("").Hero.Title; got != DefaultPageTitle {
		t.Errorf("blank title hero = %q, want %q", got, DefaultPageTitle)
	}
}

func TestSectionsJSON(t *testing.T) {
	doc := Document{
		Sections: Sections{
			&TextSection{Kind: KindTextTitled, Heading: "Intro", Content: "hello <b>"},
			&CardSection{Kind: KindCardsHorizontal, Heading: "Tools"},
		},
	}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"hero": null`, `"cards": []`, `"content": "hello <b>"`, `"type": "text_titled"`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded document missing %s:\n%s", want, s)
		}
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Error("encoded document should end with a newline")
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(doc, back, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionsJSON_UnknownTypeIsTextPlain(t *testing.T) {
	var ss Sections
	if err := json.Unmarshal([]byte(`[{"type":"marquee","heading":"h","content":"c"}]`), &ss); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Sections{&TextSection{Kind: KindTextPlain, Heading: "h", Content: "c"}}
	if diff := cmp.Diff(want, ss); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	orig := Document{
		Hero: DefaultHero("t", "d"),
		Sections: Sections{
			&CardSection{Kind: KindCardsVertical, Cards: []Card{{Title: "a", Meta: Lines{"x"}}}},
		},
	}
	c := orig.Clone()
	c.Hero.Title = "changed"
	cs := c.Sections[0].(*CardSection)
	cs.Cards[0].Meta[0] = "y"
	cs.Cards = append(cs.Cards, DefaultCard())

	if orig.Hero.Title != "t" {
		t.Error("clone shares hero")
	}
	oc := orig.Sections[0].(*CardSection)
	if len(oc.Cards) != 1 || oc.Cards[0].Meta[0] != "x" {
		t.Errorf("clone shares cards: %#v", oc.Cards)
	}
}

func TestMapText(t *testing.T) {
	doc := Document{
		Hero: DefaultHero("keep", "desc"),
		Sections: Sections{
			&TextSection{Kind: KindTextPlain, Heading: "keep", Content: "body"},
			&CardSection{Kind: KindCardsVertical, Cards: []Card{{Title: "keep", Content: "card"}}},
		},
	}
	doc.MapText(strings.ToUpper)

	if doc.Hero.Title != "keep" || doc.Hero.Description != "DESC" {
		t.Errorf("hero = %#v", doc.Hero)
	}
	if got := doc.Sections[0].(*TextSection).Content; got != "BODY" {
		t.Errorf("text content = %q", got)
	}
	card := doc.Sections[1].(*CardSection).Cards[0]
	if card.Title != "keep" || card.Content != "CARD" {
		t.Errorf("card = %#v", card)
	}
}

// Package document defines the page document edited through the admin form:
// an optional hero banner, an ordered list of sections and a footer.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SectionKind tags a section variant.
type SectionKind string

// Known section kinds.
const (
	KindTextPlain       SectionKind = "text_plain"
	KindTextTitled      SectionKind = "text_titled"
	KindCardsHorizontal SectionKind = "cards_horizontal"
	KindCardsVertical   SectionKind = "cards_vertical"
)

// SectionKinds lists every known kind in display order.
var SectionKinds = []SectionKind{KindTextPlain, KindTextTitled, KindCardsHorizontal, KindCardsVertical}

// ParseSectionKind returns the kind named by s, or KindTextPlain when s is
// not a known kind.
func ParseSectionKind(s string) SectionKind {
	for _, k := range SectionKinds {
		if string(k) == s {
			return k
		}
	}
	return KindTextPlain
}

// IsCards reports whether sections of this kind hold cards.
func (k SectionKind) IsCards() bool {
	return k == KindCardsHorizontal || k == KindCardsVertical
}

// Page is one stored page. Document is nil in listings that skip it.
type Page struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Document *Document `json:"data,omitempty"`
}

// Document is the editable content of a page.
type Document struct {
	Meta     Meta     `json:"meta"`
	Hero     *Hero    `json:"hero"`
	Sections Sections `json:"sections"`
	Footer   string   `json:"footer"`
}

// Meta carries page-level labels.
type Meta struct {
	SectionLabel string `json:"sectionLabel"`
	AdminLink    string `json:"adminLink"`
}

// Hero is the banner at the top of a page. A nil *Hero means the page has
// no banner, which is different from an empty one.
type Hero struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Chips       Lines  `json:"chips"`
}

// Card is one tile inside a card section.
type Card struct {
	Title     string `json:"title"`
	Status    string `json:"status"`
	Content   string `json:"content"`
	Meta      Lines  `json:"meta"`
	LinkLabel string `json:"linkLabel"`
	LinkURL   string `json:"linkUrl"`
}

// Lines is a list of short strings that always encodes as a JSON array.
type Lines []string

// MarshalJSON implements json.Marshaler.
func (l Lines) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return marshalRaw([]string(l))
}

// Section is one content block of a document: *TextSection or *CardSection.
type Section interface {
	Type() SectionKind
	isSection()
}

// TextSection is a text_plain or text_titled block.
type TextSection struct {
	Kind    SectionKind
	Heading string
	Content string
}

// Type implements Section.
func (s *TextSection) Type() SectionKind { return s.Kind }
func (*TextSection) isSection()          {}

// CardSection is a cards_horizontal or cards_vertical block.
type CardSection struct {
	Kind    SectionKind
	Heading string
	Cards   []Card
}

// Type implements Section.
func (s *CardSection) Type() SectionKind { return s.Kind }
func (*CardSection) isSection()          {}

// Sections is the ordered section list of a document.
type Sections []Section

type textSectionJSON struct {
	Type    SectionKind `json:"type"`
	Heading string      `json:"heading"`
	Content string      `json:"content"`
}

type cardSectionJSON struct {
	Type    SectionKind `json:"type"`
	Heading string      `json:"heading"`
	Cards   []Card      `json:"cards"`
}

type rawSection struct {
	Type    string `json:"type"`
	Heading string `json:"heading"`
	Content string `json:"content"`
	Cards   []Card `json:"cards"`
}

// MarshalJSON implements json.Marshaler.
func (ss Sections) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(ss))
	for i, s := range ss {
		switch v := s.(type) {
		case *TextSection:
			out = append(out, textSectionJSON{Type: v.Kind, Heading: v.Heading, Content: v.Content})
		case *CardSection:
			cards := v.Cards
			if cards == nil {
				cards = []Card{}
			}
			out = append(out, cardSectionJSON{Type: v.Kind, Heading: v.Heading, Cards: cards})
		default:
			return nil, fmt.Errorf("document: section %d: unsupported type %T", i, s)
		}
	}
	return marshalRaw(out)
}

// marshalRaw is json.Marshal without HTML escaping. An outer encoder keeps
// a Marshaler's bytes as-is, so escaping here would leak into every output.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler. Unknown section types decode
// as text_plain.
func (ss *Sections) UnmarshalJSON(data []byte) error {
	var raws []rawSection
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Sections, 0, len(raws))
	for _, r := range raws {
		kind := ParseSectionKind(r.Type)
		if kind.IsCards() {
			out = append(out, &CardSection{Kind: kind, Heading: r.Heading, Cards: r.Cards})
			continue
		}
		out = append(out, &TextSection{Kind: kind, Heading: r.Heading, Content: r.Content})
	}
	*ss = out
	return nil
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d
	if d.Hero != nil {
		h := *d.Hero
		h.Chips = cloneLines(d.Hero.Chips)
		out.Hero = &h
	}
	if d.Sections != nil {
		out.Sections = make(Sections, len(d.Sections))
		for i, s := range d.Sections {
			out.Sections[i] = cloneSection(s)
		}
	}
	return out
}

func cloneSection(s Section) Section {
	switch v := s.(type) {
	case *TextSection:
		c := *v
		return &c
	case *CardSection:
		c := *v
		if v.Cards != nil {
			c.Cards = make([]Card, len(v.Cards))
			for i, card := range v.Cards {
				card.Meta = cloneLines(card.Meta)
				c.Cards[i] = card
			}
		}
		return &c
	}
	return s
}

func cloneLines(l Lines) Lines {
	if l == nil {
		return nil
	}
	return append(Lines{}, l...)
}

// MapText applies fn to the free-text fields of d in place: the hero
// description, text section content and card content.
func (d *Document) MapText(fn func(string) string) {
	if d.Hero != nil {
		d.Hero.Description = fn(d.Hero.Description)
	}
	for _, s := range d.Sections {
		switch v := s.(type) {
		case *TextSection:
			v.Content = fn(v.Content)
		case *CardSection:
			for i := range v.Cards {
				v.Cards[i].Content = fn(v.Cards[i].Content)
			}
		}
	}
}

// Marshal encodes v as two-space indented JSON without HTML escaping and
// with a trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

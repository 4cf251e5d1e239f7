// Package form converts between the admin form's flat field set and
// document.Document.
//
// Nested collections are addressed by a dense zero-based index embedded in
// the field name (sections-{i}-heading, sections-{i}-cards-{j}-title), and
// every collection is preceded by a count field (section_count,
// sections-{i}-card_count). Missing or malformed counts read as zero and
// missing fields read as empty; decoding never fails.
package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/starford/portal/internal/document"
)

// maxItems bounds any count field so a forged form cannot allocate
// arbitrarily many sections or cards.
const maxItems = 1000

// Field names.
const (
	FieldHeroPresent     = "hero_present"
	FieldHeroTitle       = "hero_title"
	FieldHeroDescription = "hero_description"
	FieldHeroChips       = "hero_chips"
	FieldSectionLabel    = "section_label"
	FieldAdminLink       = "admin_link"
	FieldFooter          = "footer"
	FieldSectionCount    = "section_count"
)

// SectionPrefix returns the field prefix of section i.
func SectionPrefix(i int) string {
	return fmt.Sprintf("sections-%d-", i)
}

// CardPrefix returns the field prefix of card j in section i.
func CardPrefix(i, j int) string {
	return fmt.Sprintf("sections-%d-cards-%d-", i, j)
}

// Decode builds a document from submitted form values.
func Decode(values url.Values) document.Document {
	var hero *document.Hero
	if values.Get(FieldHeroPresent) == "1" {
		hero = &document.Hero{
			Title:       field(values, FieldHeroTitle),
			Description: field(values, FieldHeroDescription),
			Chips:       SplitLines(values.Get(FieldHeroChips)),
		}
	}

	adminLink := field(values, FieldAdminLink)
	if adminLink == "" {
		adminLink = document.DefaultAdminLink
	}

	return document.Document{
		Meta: document.Meta{
			SectionLabel: field(values, FieldSectionLabel),
			AdminLink:    adminLink,
		},
		Hero:     hero,
		Sections: DecodeSections(values),
		Footer:   field(values, FieldFooter),
	}
}

// DecodeSections reads section_count sections and their cards.
func DecodeSections(values url.Values) document.Sections {
	n := count(values, FieldSectionCount)
	sections := make(document.Sections, 0, n)
	for i := 0; i < n; i++ {
		prefix := SectionPrefix(i)
		kind := document.ParseSectionKind(values.Get(prefix + "variant"))
		heading := field(values, prefix+"heading")

		if !kind.IsCards() {
			sections = append(sections, &document.TextSection{
				Kind:    kind,
				Heading: heading,
				Content: field(values, prefix+"content"),
			})
			continue
		}

		m := count(values, prefix+"card_count")
		cards := make([]document.Card, 0, m)
		for j := 0; j < m; j++ {
			cp := CardPrefix(i, j)
			cards = append(cards, document.Card{
				Title:     field(values, cp+"title"),
				Status:    field(values, cp+"status"),
				Content:   field(values, cp+"content"),
				Meta:      SplitLines(values.Get(cp + "meta")),
				LinkLabel: field(values, cp+"link_label"),
				LinkURL:   field(values, cp+"link_url"),
			})
		}
		sections = append(sections, &document.CardSection{Kind: kind, Heading: heading, Cards: cards})
	}
	return sections
}

// Encode renders doc as the field set Decode reads back.
func Encode(doc document.Document) url.Values {
	v := url.Values{}
	if doc.Hero != nil {
		v.Set(FieldHeroPresent, "1")
		v.Set(FieldHeroTitle, doc.Hero.Title)
		v.Set(FieldHeroDescription, doc.Hero.Description)
		v.Set(FieldHeroChips, JoinLines(doc.Hero.Chips))
	}
	v.Set(FieldSectionLabel, doc.Meta.SectionLabel)
	v.Set(FieldAdminLink, doc.Meta.AdminLink)
	v.Set(FieldFooter, doc.Footer)
	v.Set(FieldSectionCount, strconv.Itoa(len(doc.Sections)))

	for i, s := range doc.Sections {
		prefix := SectionPrefix(i)
		v.Set(prefix+"variant", string(s.Type()))
		switch sec := s.(type) {
		case *document.TextSection:
			v.Set(prefix+"heading", sec.Heading)
			v.Set(prefix+"content", sec.Content)
		case *document.CardSection:
			v.Set(prefix+"heading", sec.Heading)
			v.Set(prefix+"card_count", strconv.Itoa(len(sec.Cards)))
			for j, c := range sec.Cards {
				cp := CardPrefix(i, j)
				v.Set(cp+"title", c.Title)
				v.Set(cp+"status", c.Status)
				v.Set(cp+"content", c.Content)
				v.Set(cp+"meta", JoinLines(c.Meta))
				v.Set(cp+"link_label", c.LinkLabel)
				v.Set(cp+"link_url", c.LinkURL)
			}
		}
	}
	return v
}

// SplitLines splits a multi-line text block into its trimmed, non-blank
// lines. The result is never nil.
func SplitLines(s string) document.Lines {
	out := document.Lines{}
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinLines is the textarea form of a line list.
func JoinLines(l document.Lines) string {
	return strings.Join(l, "\n")
}

func field(values url.Values, name string) string {
	return strings.TrimSpace(values.Get(name))
}

func count(values url.Values, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(values.Get(name)))
	if err != nil || n < 0 {
		return 0
	}
	return min(n, maxItems)
}

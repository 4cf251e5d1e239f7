// Package editor implements the admin form's edit actions. Structural
// actions (save, create page, delete page) are carried out by the caller;
// staging actions change an unsaved document that is sent back to the
// operator for further editing.
package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/portal/internal/document"
)

// Kind identifies an edit action.
type Kind int

// Action kinds.
const (
	Save Kind = iota
	CreatePage
	DeletePage
	AddSection
	DeleteHero
	RestoreHero
	DeleteSection
	AddCard
	DeleteCard
)

var kindNames = map[Kind]string{
	Save:          "save",
	CreatePage:    "create_page",
	DeletePage:    "delete_page",
	AddSection:    "add_section",
	DeleteHero:    "delete_hero",
	RestoreHero:   "restore_hero",
	DeleteSection: "delete_section",
	AddCard:       "add_card",
	DeleteCard:    "delete_card",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is a parsed action discriminator. Section and Card are the
// indices carried by delete_section_{i}, add_card_{i} and
// delete_card_{i}_{j}; a malformed index is stored as -1 so that Apply
// leaves the document unchanged.
type Action struct {
	Kind    Kind
	Section int
	Card    int
}

// ParseAction parses the value of the form's action field. Empty and
// unrecognised values mean Save.
func ParseAction(s string) Action {
	s = strings.TrimSpace(s)
	switch s {
	case "create_page":
		return Action{Kind: CreatePage}
	case "delete_page":
		return Action{Kind: DeletePage}
	case "add_section":
		return Action{Kind: AddSection}
	case "delete_hero":
		return Action{Kind: DeleteHero}
	case "restore_hero":
		return Action{Kind: RestoreHero}
	}

	switch {
	case strings.HasPrefix(s, "delete_section_"):
		return Action{Kind: DeleteSection, Section: index(strings.TrimPrefix(s, "delete_section_")), Card: -1}
	case strings.HasPrefix(s, "add_card_"):
		return Action{Kind: AddCard, Section: index(strings.TrimPrefix(s, "add_card_")), Card: -1}
	case strings.HasPrefix(s, "delete_card_"):
		parts := strings.Split(strings.TrimPrefix(s, "delete_card_"), "_")
		if len(parts) != 2 {
			return Action{Kind: DeleteCard, Section: -1, Card: -1}
		}
		return Action{Kind: DeleteCard, Section: index(parts[0]), Card: index(parts[1])}
	}
	return Action{Kind: Save}
}

func index(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// String returns the discriminator ParseAction reads back.
func (a Action) String() string {
	switch a.Kind {
	case DeleteSection, AddCard:
		return fmt.Sprintf("%s_%d", a.Kind, a.Section)
	case DeleteCard:
		return fmt.Sprintf("%s_%d_%d", a.Kind, a.Section, a.Card)
	}
	return a.Kind.String()
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	*a = ParseAction(string(b))
	return nil
}

// Staging reports whether a only changes the unsaved document.
func (a Action) Staging() bool {
	switch a.Kind {
	case AddSection, DeleteHero, RestoreHero, DeleteSection, AddCard, DeleteCard:
		return true
	}
	return false
}

// Apply returns a copy of doc with the staging action a applied. Indices
// out of range, card actions on text sections and non-staging actions
// return the copy unchanged.
func Apply(doc document.Document, a Action) document.Document {
	out := doc.Clone()

	switch a.Kind {
	case AddSection:
		out.Sections = append(out.Sections, document.DefaultSection(document.KindTextPlain))

	case DeleteHero:
		out.Hero = nil

	case RestoreHero:
		out.Hero = document.DefaultHero(document.DefaultPageTitle, "")

	case DeleteSection:
		if inRange(a.Section, len(out.Sections)) {
			out.Sections = append(out.Sections[:a.Section], out.Sections[a.Section+1:]...)
		}

	case AddCard:
		if cs := cardSection(out, a.Section); cs != nil {
			cs.Cards = append(cs.Cards, document.DefaultCard())
		}

	case DeleteCard:
		if cs := cardSection(out, a.Section); cs != nil && inRange(a.Card, len(cs.Cards)) {
			cs.Cards = append(cs.Cards[:a.Card], cs.Cards[a.Card+1:]...)
		}
	}
	return out
}

func cardSection(doc document.Document, i int) *document.CardSection {
	if !inRange(i, len(doc.Sections)) {
		return nil
	}
	cs, _ := doc.Sections[i].(*document.CardSection)
	return cs
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

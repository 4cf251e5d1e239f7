package document

// DefaultAdminLink is used when a document carries no admin link.
const DefaultAdminLink = "http://localhost:5000/admin"

// DefaultPageTitle titles pages and hero banners created without one.
const DefaultPageTitle = "新建页面"

// DefaultCard returns an empty card.
func DefaultCard() Card {
	return Card{Meta: Lines{}}
}

// DefaultHero returns a hero banner with no chips.
func DefaultHero(title, description string) *Hero {
	return &Hero{Title: title, Description: description, Chips: Lines{}}
}

// DefaultSection returns an empty section of kind. Unknown kinds become
// text_plain; card kinds start with one empty card.
func DefaultSection(kind SectionKind) Section {
	kind = ParseSectionKind(string(kind))
	if kind.IsCards() {
		return &CardSection{Kind: kind, Cards: []Card{DefaultCard()}}
	}
	return &TextSection{Kind: kind}
}

// NewPageDocument is the document given to a freshly created page.
func NewPageDocument(title string) Document {
	if title == "" {
		title = DefaultPageTitle
	}
	return Document{
		Meta: Meta{
			SectionLabel: "页面说明",
			AdminLink:    DefaultAdminLink,
		},
		Hero:     DefaultHero(title, ""),
		Sections: Sections{},
	}
}

// DefaultDocument seeds the home page when no legacy snapshot exists.
func DefaultDocument() Document {
	return Document{
		Meta: Meta{
			SectionLabel: "Tools Portal",
			AdminLink:    DefaultAdminLink,
		},
		Hero:     DefaultHero("工具面板", ""),
		Sections: Sections{},
	}
}

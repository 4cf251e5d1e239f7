package mcpserver

// DocumentFormatContract describes the page document JSON accepted by
// save_page and edit_page.
const DocumentFormatContract = `# Portal Page Document Contract

A page is identified by its slug and has a title and one document.

## Slug

Lowercase letters, digits and hyphens only, 1 to 48 characters
(` + "`" + `^[a-z0-9-]{1,48}$` + "`" + `). Slugs are unique.

## Document

` + "```" + `json
{
  "meta": {
    "sectionLabel": "Tools Portal",
    "adminLink": "http://localhost:5000/admin"
  },
  "hero": {
    "title": "工具面板",
    "description": "One paragraph shown under the title.",
    "chips": ["short", "labels"]
  },
  "sections": [
    {"type": "text_plain", "heading": "", "content": "Plain text block."},
    {"type": "text_titled", "heading": "Notice", "content": "Text with a heading."},
    {
      "type": "cards_horizontal",
      "heading": "Services",
      "cards": [
        {
          "title": "Wiki",
          "status": "online",
          "content": "Team documentation.",
          "meta": ["owner: ops", "port 8080"],
          "linkLabel": "Open",
          "linkUrl": "https://wiki.example.com"
        }
      ]
    },
    {"type": "cards_vertical", "heading": "Quick reference", "cards": []}
  ],
  "footer": "Footer text."
}
` + "```" + `

## Rules

1. ` + "`" + `hero` + "`" + ` may be ` + "`" + `null` + "`" + `; the page then has no banner. An empty hero object is
   still a banner.
2. ` + "`" + `type` + "`" + ` is one of text_plain, text_titled, cards_horizontal,
   cards_vertical. Any other value is read as text_plain.
3. Text sections use ` + "`" + `content` + "`" + `; card sections use ` + "`" + `cards` + "`" + `.
4. ` + "`" + `chips` + "`" + ` and card ` + "`" + `meta` + "`" + ` are lists of short single-line strings.
5. Saving replaces the whole document; send every section, not a diff.
6. Every page change rewrites the exported snapshot file.

## Edit actions

` + "`" + `edit_page` + "`" + ` takes one action and returns the changed document without saving it,
except for ` + "`" + `save` + "`" + `, which stores it:

- ` + "`" + `add_section` + "`" + ` appends an empty text_plain section.
- ` + "`" + `delete_hero` + "`" + ` / ` + "`" + `restore_hero` + "`" + ` remove or reinstate the banner.
- ` + "`" + `delete_section_{i}` + "`" + ` removes section i.
- ` + "`" + `add_card_{i}` + "`" + ` appends an empty card to card section i.
- ` + "`" + `delete_card_{i}_{j}` + "`" + ` removes card j of section i.

Indices are zero-based. Out-of-range indices leave the document unchanged.
`

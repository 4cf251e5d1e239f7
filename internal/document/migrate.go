package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MigrateLegacy upgrades a pre-sections payload in place and returns it.
// A payload that already has a "sections" key is returned untouched, so
// applying it twice is the same as applying it once.
//
// Legacy "services" become one cards_horizontal section and the legacy
// "quick" lists become one cards_vertical section; both keys are removed.
func MigrateLegacy(payload map[string]any) map[string]any {
	if _, ok := payload["sections"]; ok {
		return payload
	}

	sections := []any{}

	if services, _ := payload["services"].([]any); len(services) > 0 {
		cards := make([]any, 0, len(services))
		for _, raw := range services {
			svc, _ := raw.(map[string]any)
			cards = append(cards, legacyCard(
				stringOr(svc, "title", ""),
				stringOr(svc, "status", ""),
				stringOr(svc, "description", ""),
				stringList(svc["meta"]),
				stringOr(svc, "linkLabel", ""),
				stringOr(svc, "linkUrl", ""),
			))
		}
		meta, _ := payload["meta"].(map[string]any)
		sections = append(sections, map[string]any{
			"type":    string(KindCardsHorizontal),
			"heading": stringOr(meta, "sectionLabel", "服务面板"),
			"cards":   cards,
		})
	}

	quick, _ := payload["quick"].(map[string]any)
	var quickCards []any
	if lines := stringList(quick["firstUse"]); len(lines) > 0 {
		quickCards = append(quickCards, legacyCard(
			stringOr(quick, "firstUseTitle", "第一次使用"), "", strings.Join(lines, "\n"), []string{}, "", ""))
	}
	if lines := stringList(quick["issues"]); len(lines) > 0 {
		quickCards = append(quickCards, legacyCard(
			stringOr(quick, "issuesTitle", "遇到故障"), "", strings.Join(lines, "\n"), []string{}, "", ""))
	}
	if len(quickCards) > 0 {
		sections = append(sections, map[string]any{
			"type":    string(KindCardsVertical),
			"heading": stringOr(quick, "title", "速查"),
			"cards":   quickCards,
		})
	}

	payload["sections"] = sections
	delete(payload, "services")
	delete(payload, "quick")
	return payload
}

func legacyCard(title, status, content string, meta []string, linkLabel, linkURL string) map[string]any {
	return map[string]any{
		"title":     title,
		"status":    status,
		"content":   content,
		"meta":      meta,
		"linkLabel": linkLabel,
		"linkUrl":   linkURL,
	}
}

func stringOr(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// LoadLegacy decodes a seed document from data, which is either a snapshot
// ({"pages": {...}}, whose first page is used) or a bare document in the
// current or legacy shape.
func LoadLegacy(data []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Document{}, fmt.Errorf("document: decode seed: %w", err)
	}

	raw := data
	if pages, ok := top["pages"]; ok {
		first, err := firstPageData(pages)
		if err != nil {
			return Document{}, err
		}
		if first != nil {
			raw = first
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Document{}, fmt.Errorf("document: decode seed payload: %w", err)
	}
	migrated, err := json.Marshal(MigrateLegacy(payload))
	if err != nil {
		return Document{}, fmt.Errorf("document: encode migrated seed: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(migrated, &doc); err != nil {
		return Document{}, fmt.Errorf("document: decode migrated seed: %w", err)
	}
	return doc, nil
}

// firstPageData returns the "data" member of the first entry of a snapshot's
// pages object in file order, or nil when there are no pages.
func firstPageData(pages json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(pages))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("document: decode seed pages: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("document: seed pages is not an object")
	}
	if !dec.More() {
		return nil, nil
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("document: decode seed page key: %w", err)
	}
	var entry struct {
		Data json.RawMessage `json:"data"`
	}
	if err := dec.Decode(&entry); err != nil {
		return nil, fmt.Errorf("document: decode seed page: %w", err)
	}
	if len(entry.Data) == 0 {
		return nil, errors.New("document: seed page has no data")
	}
	return entry.Data, nil
}

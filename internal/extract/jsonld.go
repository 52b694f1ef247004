package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// JSONLDExtractor walks every application/ld+json block looking for
// schema.org Person nodes, directly typed or reachable through the usual
// organization relations.
type JSONLDExtractor struct{}

func (e *JSONLDExtractor) Name() string { return "jsonld" }

func (e *JSONLDExtractor) Extract(page domain.Page, _ string) ([]domain.PersonCandidate, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, nil
	}

	var candidates []domain.PersonCandidate
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var root any
		// Malformed blocks are skipped; one bad script must not abort the page.
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return
		}
		walkLD(root, func(node map[string]any) {
			candidates = append(candidates, personFromNode(node)...)
		})
	})
	return candidates, nil
}

// walkLD visits every object in an arbitrary JSON-LD value, including
// @graph members and nested relation values.
func walkLD(v any, visit func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(t)
		for _, child := range t {
			walkLD(child, visit)
		}
	case []any:
		for _, item := range t {
			walkLD(item, visit)
		}
	}
}

// isType reports whether a JSON-LD node carries the given @type, which may
// be a string or a list of strings.
func isType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func personFromNode(node map[string]any) []domain.PersonCandidate {
	if !isType(node, "Person") {
		return nil
	}
	name, _ := node["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" || !capTokenName.MatchString(name) {
		return nil
	}
	match := capTokenName.FindString(name)
	first, last, ok := splitName(match)
	if !ok {
		return nil
	}

	title := firstString(node, "jobTitle", "title", "role")
	weight := weightStructured
	if RoleKeyword.MatchString(title) {
		weight = weightStructuredRole
	}
	return []domain.PersonCandidate{{
		First:  first,
		Last:   last,
		Title:  title,
		Weight: weight,
		Source: "jsonld",
	}}
}

func firstString(node map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := node[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

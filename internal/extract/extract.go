// Package extract runs independent heuristics over fetched pages and emits
// weighted person and email candidates.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// Base weights per extractor; role matches boost structured sources.
const (
	weightStructured     = 1
	weightStructuredRole = 3
	weightBlockHeuristic = 2
	weightRoleProximity  = 4
)

// Extractor is one heuristic signal source: given a fetched page and the
// target registrable domain, produce person candidates and/or same-domain
// email observations.
type Extractor interface {
	Name() string
	Extract(page domain.Page, site string) ([]domain.PersonCandidate, []string)
}

// Pipeline runs every extractor over every page.
type Pipeline struct {
	extractors []Extractor
}

// NewPipeline assembles the standard five-extractor pipeline.
func NewPipeline(strictBlocks bool) *Pipeline {
	return &Pipeline{extractors: []Extractor{
		&EmailScanner{},
		&JSONLDExtractor{},
		&HCardExtractor{},
		&RoleProximityExtractor{},
		&BlockHeuristicExtractor{Strict: strictBlocks},
	}}
}

// Run returns all validated person candidates and the deduplicated set of
// same-domain emails observed across the pages.
func (p *Pipeline) Run(pages []domain.Page, site string) ([]domain.PersonCandidate, []string) {
	var candidates []domain.PersonCandidate
	emailSet := make(map[string]bool)
	var emails []string

	for _, page := range pages {
		for _, ex := range p.extractors {
			cands, found := ex.Extract(page, site)
			candidates = append(candidates, cands...)
			for _, e := range found {
				if !emailSet[e] {
					emailSet[e] = true
					emails = append(emails, e)
				}
			}
		}
	}
	return candidates, emails
}

// capTokenName matches a two-capitalized-token person name.
var capTokenName = regexp.MustCompile(`\b\p{Lu}[\p{L}'\x{2019}-]+[ \t]+\p{Lu}[\p{L}'\x{2019}-]+\b`)

// splitName breaks a matched "First Last" string into its tokens.
func splitName(name string) (first, last string, ok bool) {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// visibleText returns the rendered text of a page with scripts and styles
// stripped, single-spaced.
func visibleText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

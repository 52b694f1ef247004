package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// HCardExtractor parses microformat h-card/vcard blocks for a name and
// job-title pair.
type HCardExtractor struct{}

func (e *HCardExtractor) Name() string { return "hcard" }

func (e *HCardExtractor) Extract(page domain.Page, _ string) ([]domain.PersonCandidate, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, nil
	}

	var candidates []domain.PersonCandidate
	doc.Find(".h-card, .vcard, .hcard").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".p-name, .fn").First().Text())
		if name == "" {
			// Fall back to the block's leading text.
			name = strings.TrimSpace(s.Text())
		}
		match := capTokenName.FindString(name)
		if match == "" {
			return
		}
		first, last, ok := splitName(match)
		if !ok {
			return
		}

		title := strings.TrimSpace(s.Find(".p-job-title, .title, .role").First().Text())
		weight := weightStructured
		if RoleKeyword.MatchString(title) {
			weight = weightStructuredRole
		}
		candidates = append(candidates, domain.PersonCandidate{
			First:  first,
			Last:   last,
			Title:  title,
			Weight: weight,
			Source: "hcard",
		})
	})
	return candidates, nil
}

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// maxBlockLen skips containers too large to be a single person card.
const maxBlockLen = 400

const blockSelector = `h1, h2, h3, h4, ` +
	`[class*="team"], [class*="member"], [class*="person"], ` +
	`[class*="card"], [class*="bio"], [class*="staff"]`

// BlockHeuristicExtractor scans heading-like and team/member/bio elements
// for name-shaped token pairs. In strict mode a role keyword must appear in
// the same text block. The human-name validator gates every emission.
type BlockHeuristicExtractor struct {
	Strict bool
}

func (e *BlockHeuristicExtractor) Name() string { return "block-heuristic" }

func (e *BlockHeuristicExtractor) Extract(page domain.Page, _ string) ([]domain.PersonCandidate, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, nil
	}

	var candidates []domain.PersonCandidate
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		block := strings.Join(strings.Fields(s.Text()), " ")
		if block == "" || len(block) > maxBlockLen {
			return
		}
		role := RoleKeyword.FindString(block)
		if e.Strict && role == "" {
			return
		}
		// The role word itself capitalizes ("Owner Anna Bell") and would
		// shadow the real pair, so search with roles blanked out.
		match := capTokenName.FindString(RoleKeyword.ReplaceAllString(block, " "))
		if match == "" {
			return
		}
		first, last, ok := splitName(match)
		if !ok || !IsHumanName(first, last) {
			return
		}
		candidates = append(candidates, domain.PersonCandidate{
			First:  first,
			Last:   last,
			Title:  role,
			Weight: weightBlockHeuristic,
			Source: "block-heuristic",
		})
	})
	return candidates, nil
}

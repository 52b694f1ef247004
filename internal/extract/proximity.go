package extract

import (
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// proximityWindow is how far past a role keyword a name may appear.
const proximityWindow = 200

// RoleProximityExtractor scans visible body text for a role keyword
// followed closely by a capitalized two-token name. Strongest signal of
// all extractors.
type RoleProximityExtractor struct{}

func (e *RoleProximityExtractor) Name() string { return "role-proximity" }

func (e *RoleProximityExtractor) Extract(page domain.Page, _ string) ([]domain.PersonCandidate, []string) {
	text := visibleText(page.Body)
	if text == "" {
		return nil, nil
	}

	var candidates []domain.PersonCandidate
	for _, loc := range RoleKeyword.FindAllStringIndex(text, -1) {
		end := loc[1] + proximityWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[loc[1]:end]
		match := capTokenName.FindString(window)
		if match == "" {
			continue
		}
		first, last, ok := splitName(match)
		if !ok {
			continue
		}
		candidates = append(candidates, domain.PersonCandidate{
			First:  first,
			Last:   last,
			Title:  text[loc[0]:loc[1]],
			Weight: weightRoleProximity,
			Source: "role-proximity",
		})
	}
	return candidates, nil
}

// Package score merges per-page person sightings into ranked candidates and
// decides whether any of them is credible enough to act on.
package score

import (
	"sort"
	"strings"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"github.com/midiakiasat/MAILSIEVE/internal/extract"
)

const (
	// acceptThreshold is the minimum merged weight a candidate needs.
	acceptThreshold = 4
	// roleBonus is added once per candidate when any sighting carried a
	// matching role title.
	roleBonus = 3
)

// Merge collapses sightings of the same person, sums their weights, applies
// the role bonus at most once, and keeps the longest observed title. Names
// that fail the human-name validator are dropped here so callers never see
// them. The result is ranked: weight descending, ties by last name then
// first name case-insensitively.
func Merge(cands []domain.PersonCandidate) []domain.ScoredCandidate {
	type entry struct {
		sc      domain.ScoredCandidate
		boosted bool
	}
	merged := make(map[string]*entry)
	var order []string

	for _, c := range cands {
		if !extract.IsHumanName(c.First, c.Last) {
			continue
		}
		key := extract.NormalizeToken(c.First) + " " + extract.NormalizeToken(c.Last)
		e, ok := merged[key]
		if !ok {
			e = &entry{sc: domain.ScoredCandidate{First: c.First, Last: c.Last}}
			merged[key] = e
			order = append(order, key)
		}
		e.sc.Weight += c.Weight
		if len(c.Title) > len(e.sc.Title) {
			e.sc.Title = c.Title
		}
		if !e.boosted && extract.RoleKeyword.MatchString(c.Title) {
			e.boosted = true
			e.sc.Weight += roleBonus
		}
	}

	out := make([]domain.ScoredCandidate, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key].sc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		li, lj := strings.ToLower(out[i].Last), strings.ToLower(out[j].Last)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(out[i].First) < strings.ToLower(out[j].First)
	})
	return out
}

// Select merges and ranks the candidates and accepts the top one iff it
// clears the threshold and does not shadow the company identity.
func Select(cands []domain.PersonCandidate, company, sldLabel string) (domain.ScoredCandidate, bool) {
	for _, sc := range Merge(cands) {
		if sc.Weight < acceptThreshold {
			return domain.ScoredCandidate{}, false
		}
		if !ShadowsCompany(sc.First, sc.Last, company, sldLabel) {
			return sc, true
		}
	}
	return domain.ScoredCandidate{}, false
}

// ShadowsCompany reports whether a name is likely the organization itself
// rather than a person: it equals the company name or the domain's
// second-level label, one of its tokens is a token of the company name, or
// a token is (or contains) a stop-word.
func ShadowsCompany(first, last, company, sldLabel string) bool {
	nf, nl := extract.NormalizeToken(first), extract.NormalizeToken(last)
	full := nf + nl

	if full == extract.NormalizeToken(sldLabel) && sldLabel != "" {
		return true
	}

	var companyTokens []string
	for _, t := range strings.Fields(company) {
		if n := extract.NormalizeToken(t); n != "" {
			companyTokens = append(companyTokens, n)
		}
	}
	if full == strings.Join(companyTokens, "") && len(companyTokens) > 0 {
		return true
	}
	inCompany := func(tok string) bool {
		for _, t := range companyTokens {
			if tok == t {
				return true
			}
		}
		return false
	}
	// Both tokens present means the "person" is the organization name
	// itself ("Acme Solutions" at Acme Solutions Srl).
	if inCompany(nf) && inCompany(nl) {
		return true
	}

	if extract.ContainsStopword(nf) || extract.ContainsStopword(nl) {
		return true
	}
	return false
}

// Package pattern infers the local-part convention of a domain's email
// addresses from observed samples and synthesizes an address for a named
// person, or falls back to ranking the observed addresses themselves.
package pattern

import (
	"regexp"
	"sort"
	"strings"

	"github.com/midiakiasat/MAILSIEVE/internal/extract"
)

// hypothesis is one local-part convention with a generator for new names.
type hypothesis struct {
	name    string
	matches func(local string) bool
	build   func(first, last string) string
}

var lowerWordRe = regexp.MustCompile(`^[a-z]+$`)

func sepHypothesis(name, sep string) hypothesis {
	return hypothesis{
		name: name,
		matches: func(local string) bool {
			parts := strings.Split(local, sep)
			return len(parts) == 2 && lowerWordRe.MatchString(parts[0]) && lowerWordRe.MatchString(parts[1])
		},
		build: func(first, last string) string { return first + sep + last },
	}
}

// hypotheses in preference order; earlier wins a tally tie. A bare
// lowercase local is ambiguous, so it counts toward first, last and
// firstlast at once, and a short one toward flast as well.
var hypotheses = []hypothesis{
	sepHypothesis("first.last", "."),
	sepHypothesis("first_last", "_"),
	sepHypothesis("first-last", "-"),
	{
		name: "flast",
		matches: func(local string) bool {
			return lowerWordRe.MatchString(local) && len(local) >= 3 && len(local) <= 12
		},
		build: func(first, last string) string {
			if first == "" {
				return last
			}
			return first[:1] + last
		},
	},
	{
		name:    "first",
		matches: func(local string) bool { return lowerWordRe.MatchString(local) },
		build:   func(first, _ string) string { return first },
	},
	{
		name:    "last",
		matches: func(local string) bool { return lowerWordRe.MatchString(local) },
		build:   func(_, last string) string { return last },
	},
	{
		name:    "firstlast",
		matches: func(local string) bool { return lowerWordRe.MatchString(local) },
		build:   func(first, last string) string { return first + last },
	},
}

// Infer tallies every sample against every hypothesis and returns the name
// of the best one, or "" when no sample matched anything.
func Infer(samples []string) string {
	best, bestCount := "", 0
	for _, h := range hypotheses {
		count := 0
		for _, s := range samples {
			if local, ok := localPart(s); ok && h.matches(local) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = h.name, count
		}
	}
	return best
}

// Synthesize builds localpart@domain for the given name following the
// convention inferred from samples. It returns "" when there are no samples
// to infer from, when the name normalizes to nothing, or when no hypothesis
// matched.
func Synthesize(first, last string, samples []string, domain string) string {
	if len(samples) == 0 {
		return ""
	}
	nf, nl := extract.NormalizeToken(first), extract.NormalizeToken(last)
	if nf == "" || nl == "" {
		return ""
	}
	name := Infer(samples)
	if name == "" {
		return ""
	}
	for _, h := range hypotheses {
		if h.name == name {
			return h.build(nf, nl) + "@" + domain
		}
	}
	return ""
}

var ownerLocalRe = regexp.MustCompile(`(?i)^(owner|founder|ceo|boss|titolare|direzione|inhaber|gerente|chef)$`)
var roleLocalRe = regexp.MustCompile(`(?i)owner|founder|ceo|director|direttore|titolare|gerente|inhaber|gerant`)
var genericLocalRe = regexp.MustCompile(`(?i)^(info|contact|contacts|contatti|hello|mail|email|office|admin|webmaster|support|sales|marketing|press|jobs|noreply|no-reply|postmaster)$`)

// BestObserved ranks the sampled addresses by how likely the local part is
// to reach an owner and returns the best, or "" for an empty set. Used when
// no person candidate was accepted; it never invents an address.
func BestObserved(samples []string) string {
	type ranked struct {
		addr string
		rank int
	}
	var rs []ranked
	for _, s := range samples {
		local, ok := localPart(s)
		if !ok {
			continue
		}
		rs = append(rs, ranked{addr: s, rank: localRank(local)})
	}
	if len(rs) == 0 {
		return ""
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].rank < rs[j].rank })
	return rs[0].addr
}

func localRank(local string) int {
	switch {
	case ownerLocalRe.MatchString(local):
		return 0
	case hypotheses[0].matches(local):
		return 1
	case roleLocalRe.MatchString(local):
		return 2
	case genericLocalRe.MatchString(local):
		return 4
	default:
		return 3
	}
}

func localPart(addr string) (string, bool) {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "", false
	}
	return strings.ToLower(addr[:at]), true
}

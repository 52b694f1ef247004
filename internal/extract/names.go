package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameToken is a single capitalized name word: leading uppercase letter,
// then letters, apostrophes or hyphens.
var nameToken = regexp.MustCompile(`^\p{Lu}[\p{L}'\x{2019}-]+$`)

// nameStopwords is common site and business vocabulary that frequently
// pairs into name-shaped tokens ("Contact Us", "Web Design"). Tokens are
// compared after NormalizeToken.
var nameStopwords = map[string]bool{
	"about": true, "home": true, "team": true, "contact": true, "contacts": true,
	"privacy": true, "cookie": true, "cookies": true, "policy": true, "terms": true,
	"legal": true, "news": true, "blog": true, "shop": true, "store": true,
	"email": true, "mail": true, "info": true, "support": true, "sales": true,
	"marketing": true, "service": true, "services": true, "solutions": true,
	"company": true, "group": true, "office": true, "agency": true, "studio": true,
	"web": true, "design": true, "digital": true, "media": true, "online": true,
	"read": true, "more": true, "learn": true, "click": true, "here": true,
	"get": true, "started": true, "free": true, "quote": true, "our": true,
	"your": true, "new": true, "best": true, "top": true, "all": true,
	"rights": true, "reserved": true, "copyright": true, "page": true,
	"street": true, "road": true, "avenue": true, "suite": true,
	"srl": true, "spa": true, "snc": true, "sas": true, "gmbh": true, "ag": true,
	"ltd": true, "llc": true, "inc": true, "bv": true, "sarl": true,
	"chi": true, "siamo": true, "azienda": true, "impressum": true,
	"kontakt": true, "mentions": true, "legales": true, "equipo": true,
	"united": true, "states": true, "italia": true, "italy": true,
	"san": true, "via": true,
}

// blockedPhrases are full "first last" pairs known to slip through the
// token checks (marketing copy fragments, section headings).
var blockedPhrases = map[string]bool{
	"learn more":     true,
	"read more":      true,
	"contact us":     true,
	"about us":       true,
	"our team":       true,
	"meet the":       true,
	"get started":    true,
	"privacy policy": true,
	"cookie policy":  true,
	"chi siamo":      true,
	"la nostra":      true,
	"all rights":     true,
	"join us":        true,
	"follow us":      true,
}

var vowelRe = regexp.MustCompile(`(?i)[aeiouyàèéìòùäöüáâêîôûãõ]`)

// IsHumanName reports whether the first/last pair plausibly names a
// person. Deliberately conservative: recall is sacrificed for precision.
func IsHumanName(first, last string) bool {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" {
		return false
	}
	if first == strings.ToUpper(first) || last == strings.ToUpper(last) {
		return false
	}
	if !nameToken.MatchString(first) || !nameToken.MatchString(last) {
		return false
	}
	if !vowelRe.MatchString(first) || !vowelRe.MatchString(last) {
		return false
	}
	if len([]rune(last)) < 3 {
		return false
	}
	lowLast := strings.ToLower(last)
	if strings.HasSuffix(lowLast, "s") || strings.HasSuffix(lowLast, "ing") {
		return false
	}
	nf, nl := NormalizeToken(first), NormalizeToken(last)
	if nameStopwords[nf] || nameStopwords[nl] {
		return false
	}
	if blockedPhrases[nf+" "+nl] {
		return false
	}
	return true
}

// ContainsStopword reports whether a normalized token is a stop-word or
// embeds one. Short stop-words are only matched exactly; substring checks on
// them would swallow ordinary surnames.
func ContainsStopword(tok string) bool {
	if nameStopwords[tok] {
		return true
	}
	for w := range nameStopwords {
		if len(w) >= 5 && strings.Contains(tok, w) {
			return true
		}
	}
	return false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeToken lower-cases a token, strips diacritics, and removes
// everything but letters. Used for stop-word checks, candidate keys, and
// email local-part synthesis.
func NormalizeToken(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	var b strings.Builder
	for _, r := range out {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

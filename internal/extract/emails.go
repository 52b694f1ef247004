package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	xhtml "golang.org/x/net/html"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// deobfuscator rewrites the usual "name [at] example [dot] com" disguises
// plus entity-encoded @ and . before the email regex runs.
var deobfuscator = strings.NewReplacer(
	" [at] ", "@", " (at) ", "@", " at ", "@",
	" [dot] ", ".", " (dot) ", ".", " dot ", ".",
	"[at]", "@", "(at)", "@", "[AT]", "@", "(AT)", "@",
	"[dot]", ".", "(dot)", ".", "[DOT]", ".", "(DOT)", ".",
	"&#64;", "@", "&#046;", ".", "&#46;", ".",
	"&commat;", "@", "&period;", ".",
)

// EmailScanner collects mailto targets and regex matches (after
// de-obfuscation) from the raw markup, filtered to the target domain.
type EmailScanner struct{}

func (e *EmailScanner) Name() string { return "email-scan" }

func (e *EmailScanner) Extract(page domain.Page, site string) ([]domain.PersonCandidate, []string) {
	seen := make(map[string]bool)
	var emails []string
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] || !onDomain(addr, site) {
			return
		}
		seen[addr] = true
		emails = append(emails, addr)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body)); err == nil {
		doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.Index(addr, "?"); i >= 0 {
				addr = addr[:i]
			}
			for _, part := range strings.FieldsFunc(addr, func(r rune) bool {
				return r == ',' || r == ';' || r == ' '
			}) {
				if emailRe.MatchString(part) {
					add(emailRe.FindString(part))
				}
			}
		})
	}

	// Scan the raw markup too: addresses hide in attributes and scripts.
	text := xhtml.UnescapeString(page.Body)
	text = deobfuscator.Replace(text)
	for _, m := range emailRe.FindAllString(text, -1) {
		add(m)
	}

	return nil, emails
}

// onDomain keeps only addresses on the registrable domain or a subdomain.
func onDomain(addr, site string) bool {
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	host := strings.ToLower(addr[at+1:])
	return host == site || strings.HasSuffix(host, "."+site)
}

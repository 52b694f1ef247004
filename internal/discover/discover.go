// Package discover builds and fetches the candidate page set for a domain:
// a fixed multilingual path list, sitemap-derived URLs ranked by topical
// relevance, and links harvested from the home page.
package discover

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"go.uber.org/zap"
)

// MinPages is the floor applied to the per-domain page cap.
const MinPages = 3

// seedPaths covers the usual homes of ownership and contact information
// across the languages the engine targets.
var seedPaths = []string{
	"/about",
	"/about-us",
	"/company",
	"/team",
	"/our-team",
	"/leadership",
	"/management",
	"/founders",
	"/contact",
	"/contacts",
	"/contact-us",
	"/impressum",
	"/imprint",
	"/kontakt",
	"/ueber-uns",
	"/chi-siamo",
	"/contatti",
	"/azienda",
	"/a-propos",
	"/qui-sommes-nous",
	"/equipe",
	"/contactez-nous",
	"/mentions-legales",
	"/sobre-nosotros",
	"/equipo",
	"/contacto",
	"/quem-somos",
	"/contato",
	"/legal",
}

// relevantPath matches "about/team/contact"-style paths in any of the
// supported languages; used both for home-link harvesting and for ranking
// sitemap entries.
var relevantPath = regexp.MustCompile(`(?i)(about|team|contact|leadership|management|founders?|company|staff|people|impressum|imprint|kontakt|ueber-uns|chi-siamo|contatti|azienda|a-propos|qui-sommes|equipe|mentions-legales|sobre|equipo|contacto|quem-somos|contato|legal|privacy)`)

// Fetcher is the "URL in, HTML out" primitive discovery consumes.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) domain.FetchResult
}

// Discovery assembles and fetches the page set for one domain. Pages are
// fetched sequentially: per-host pacing assumes serialized requests.
type Discovery struct {
	Fetcher    Fetcher
	MaxPages   int
	UseSitemap bool
	ExtraPaths []string
	Logger     *zap.Logger

	// Base maps a registrable domain to its base URL. Overridable in tests;
	// default targets https://<domain>.
	Base func(site string) string
}

func (d *Discovery) base(site string) string {
	if d.Base != nil {
		return d.Base(site)
	}
	return "https://" + site
}

func (d *Discovery) cap() int {
	if d.MaxPages < MinPages {
		return MinPages
	}
	return d.MaxPages
}

// Run fetches up to the page cap for site and returns the non-empty pages
// along with every URL that was attempted.
func (d *Discovery) Run(ctx context.Context, site string) ([]domain.Page, []string) {
	base := strings.TrimSuffix(d.base(site), "/")
	maxPages := d.cap()

	var pages []domain.Page
	var searched []string
	seen := make(map[string]bool)

	fetchOne := func(rawURL string) bool {
		if seen[rawURL] || len(searched) >= maxPages {
			return false
		}
		seen[rawURL] = true
		searched = append(searched, rawURL)
		res := d.Fetcher.Fetch(ctx, rawURL)
		if res.Body != "" {
			pages = append(pages, domain.Page{URL: rawURL, Body: res.Body})
			return true
		}
		return false
	}

	// Home page first: it seeds the link harvest and names the company.
	var harvested []string
	if fetchOne(base + "/") {
		harvested = d.harvestLinks(pages[len(pages)-1], base)
	}

	queue := make([]string, 0, len(seedPaths)+len(d.ExtraPaths)+len(harvested))
	for _, link := range harvested {
		queue = append(queue, link)
	}
	for _, p := range seedPaths {
		queue = append(queue, base+p)
	}
	for _, p := range d.ExtraPaths {
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		queue = append(queue, base+p)
	}
	if d.UseSitemap {
		queue = append(queue, d.sitemapURLs(ctx, base, site, maxPages)...)
	}

	for _, u := range queue {
		if len(searched) >= maxPages {
			break
		}
		fetchOne(u)
	}

	if d.Logger != nil {
		d.Logger.Debug("discovery finished",
			zap.String("site", site),
			zap.Int("searched", len(searched)),
			zap.Int("pages", len(pages)))
	}
	return pages, searched
}

// harvestLinks pulls same-site links off the home page whose paths look
// like about/team/contact destinations.
func (d *Discovery) harvestLinks(home domain.Page, base string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(home.Body))
	if err != nil {
		return nil
	}
	baseURL, err := url.Parse(home.URL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}
		u, err := baseURL.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		u.Fragment = ""
		if u.Host != baseURL.Host {
			return
		}
		if !relevantPath.MatchString(u.Path) {
			return
		}
		abs := u.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

// sitemapCap bounds how many sitemap URLs join the queue.
func sitemapCap(maxPages int) int {
	if c := maxPages / 2; c > 4 {
		return c
	}
	return 4
}

func (d *Discovery) sitemapURLs(ctx context.Context, base, site string, maxPages int) []string {
	var locs []string
	for _, path := range []string{"/sitemap.xml", "/sitemap_index.xml"} {
		res := d.Fetcher.Fetch(ctx, base+path)
		if res.Body == "" {
			continue
		}
		locs = append(locs, extractLocs(res.Body)...)
	}
	if len(locs) == 0 {
		return nil
	}

	baseHost := hostOf(base)
	seen := make(map[string]bool)
	var kept []string
	for _, loc := range locs {
		loc = strings.TrimSpace(loc)
		u, err := url.Parse(loc)
		if err != nil || loc == "" || seen[loc] {
			continue
		}
		if !sameSite(u.Host, baseHost, site) {
			continue
		}
		if !looksLikeHTML(u.Path) {
			continue
		}
		seen[loc] = true
		kept = append(kept, loc)
	}

	// Relevant URLs first; ties break lexicographically so ordering stays
	// deterministic run to run.
	sort.SliceStable(kept, func(i, j int) bool {
		ri, rj := relevantPath.MatchString(kept[i]), relevantPath.MatchString(kept[j])
		if ri != rj {
			return ri
		}
		return kept[i] < kept[j]
	})

	if limit := sitemapCap(maxPages); len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

var locRe = regexp.MustCompile(`(?is)<loc>\s*([^<\s]+)\s*</loc>`)

// extractLocs tolerates malformed sitemap XML; one bad document must not
// abort the rest of discovery.
func extractLocs(body string) []string {
	matches := locRe.FindAllStringSubmatch(body, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return u.Host
}

func sameSite(host, baseHost, site string) bool {
	host = strings.ToLower(host)
	if host == strings.ToLower(baseHost) {
		return true
	}
	host = strings.TrimPrefix(host, "www.")
	return host == site || strings.HasSuffix(host, "."+site)
}

// looksLikeHTML drops obvious asset URLs from sitemap candidates.
func looksLikeHTML(path string) bool {
	if path == "" || strings.HasSuffix(path, "/") {
		return true
	}
	dot := strings.LastIndex(path, ".")
	slash := strings.LastIndex(path, "/")
	if dot < 0 || dot < slash {
		return true
	}
	switch strings.ToLower(path[dot:]) {
	case ".html", ".htm", ".php", ".asp", ".aspx":
		return true
	}
	return false
}

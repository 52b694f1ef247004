package discover

import (
	"context"
	"testing"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) domain.FetchResult {
	f.calls = append(f.calls, rawURL)
	return domain.FetchResult{URL: rawURL, Body: f.pages[rawURL]}
}

func TestRunFetchesRootFirstAndHarvestsLinks(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://acme.com/": `<html><body>
			<a href="/about-the-founders">Founders</a>
			<a href="/pricing">Pricing</a>
			<a href="https://other.example/team">External</a>
			<a href="mailto:info@acme.com">Mail</a>
		</body></html>`,
		"https://acme.com/about-the-founders": "<html><body>team page</body></html>",
	}}
	d := &Discovery{Fetcher: ff, MaxPages: 6, Logger: zap.NewNop()}

	pages, searched := d.Run(context.Background(), "acme.com")

	if len(searched) == 0 || searched[0] != "https://acme.com/" {
		t.Fatalf("root was not fetched first: %v", searched)
	}
	if searched[1] != "https://acme.com/about-the-founders" {
		t.Errorf("harvested link not queued ahead of seeds: %v", searched[:2])
	}
	for _, u := range searched {
		if u == "https://other.example/team" {
			t.Error("external link was fetched")
		}
		if u == "https://acme.com/pricing" {
			t.Error("irrelevant link was fetched")
		}
	}
	if len(pages) != 2 {
		t.Errorf("got %d non-empty pages, want 2", len(pages))
	}
}

func TestRunRespectsPageCap(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{}}
	d := &Discovery{Fetcher: ff, MaxPages: 5, Logger: zap.NewNop()}
	_, searched := d.Run(context.Background(), "acme.com")
	if len(searched) != 5 {
		t.Errorf("searched %d pages, want exactly the cap of 5", len(searched))
	}
}

func TestRunPageCapFloor(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{}}
	d := &Discovery{Fetcher: ff, MaxPages: 1, Logger: zap.NewNop()}
	_, searched := d.Run(context.Background(), "acme.com")
	if len(searched) != MinPages {
		t.Errorf("searched %d pages, want floor of %d", len(searched), MinPages)
	}
}

func TestSitemapRanking(t *testing.T) {
	sitemap := `<?xml version="1.0"?><urlset>
		<url><loc>https://acme.com/products/widget</loc></url>
		<url><loc>https://acme.com/zz-about</loc></url>
		<url><loc>https://acme.com/aa-contact</loc></url>
		<url><loc>https://acme.com/logo.png</loc></url>
		<url><loc>https://elsewhere.com/about</loc></url>
	</urlset>`
	ff := &fakeFetcher{pages: map[string]string{
		"https://acme.com/sitemap.xml": sitemap,
	}}
	d := &Discovery{Fetcher: ff, UseSitemap: true, MaxPages: 16, Logger: zap.NewNop()}

	urls := d.sitemapURLs(context.Background(), "https://acme.com", "acme.com", 16)
	want := []string{
		"https://acme.com/aa-contact",
		"https://acme.com/zz-about",
		"https://acme.com/products/widget",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("rank %d: got %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestSitemapCap(t *testing.T) {
	if got := sitemapCap(16); got != 8 {
		t.Errorf("sitemapCap(16) = %d, want 8", got)
	}
	if got := sitemapCap(3); got != 4 {
		t.Errorf("sitemapCap(3) = %d, want 4", got)
	}
}

func TestExtractLocsTolerant(t *testing.T) {
	locs := extractLocs("garbage <loc> https://a.com/x </loc> more <loc>https://a.com/y</loc")
	if len(locs) != 1 || locs[0] != "https://a.com/x" {
		t.Errorf("extractLocs over malformed XML = %v", locs)
	}
}

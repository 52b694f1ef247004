// Package engine runs the full per-domain pipeline: discover pages, extract
// and score candidates, infer or fall back to an email, and log evidence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/midiakiasat/MAILSIEVE/internal/discover"
	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"github.com/midiakiasat/MAILSIEVE/internal/evidence"
	"github.com/midiakiasat/MAILSIEVE/internal/extract"
	"github.com/midiakiasat/MAILSIEVE/internal/monitoring"
	"github.com/midiakiasat/MAILSIEVE/internal/mx"
	"github.com/midiakiasat/MAILSIEVE/internal/pattern"
	"github.com/midiakiasat/MAILSIEVE/internal/resolver"
	"github.com/midiakiasat/MAILSIEVE/internal/score"
)

// ErrUnresolvable marks input lines that normalize to nothing.
var ErrUnresolvable = errors.New("line does not resolve to a domain")

type Engine struct {
	Discovery *discover.Discovery
	Pipeline  *extract.Pipeline
	MX        mx.Gate
	Evidence  *evidence.Logger
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// Process runs one input line through the whole pipeline. Empty owner and
// email fields are a normal outcome; the error return covers unresolvable
// input and recovered panics only.
func (e *Engine) Process(ctx context.Context, rawLine string) (rec domain.ResultRecord, err error) {
	defer func() {
		// One misbehaving page must not take the batch down.
		if r := recover(); r != nil {
			e.logger().Error("domain task panicked",
				zap.String("line", rawLine), zap.Any("panic", r))
			e.Metrics.IncDomain("panic")
			err = fmt.Errorf("domain task panic: %v", r)
		}
	}()

	site := resolver.Resolve(rawLine)
	if site == "" {
		return domain.ResultRecord{}, ErrUnresolvable
	}
	rec.Domain = site

	pages, searched := e.Discovery.Run(ctx, site)
	rec.Evidence.PagesSearched = searched

	candidates, emails := e.Pipeline.Run(pages, site)
	rec.Evidence.EmailsFound = emails
	for range candidates {
		e.Metrics.IncCandidate()
	}

	rec.Company = companyName(pages, site)

	sld := resolver.SecondLevelLabel(site)
	if winner, ok := score.Select(candidates, rec.Company, sld); ok {
		rec.Owner = winner.First + " " + winner.Last
		if len(emails) > 0 && e.MX != nil && e.MX.HasMX(ctx, site) {
			if synth := pattern.Synthesize(winner.First, winner.Last, emails, site); synth != "" {
				rec.Email = synth
				e.Metrics.IncSynthesized()
			}
		}
	}
	if rec.Email == "" {
		// Surface the most promising observed address; never invent one.
		rec.Email = pattern.BestObserved(emails)
	}

	if rec.Email != "" || rec.Owner != "" {
		e.Metrics.IncDomain("found")
	} else {
		e.Metrics.IncDomain("empty")
	}
	e.logger().Info("domain processed",
		zap.String("domain", site),
		zap.String("owner", rec.Owner),
		zap.String("email", rec.Email),
		zap.Int("pages", len(pages)),
		zap.Int("emails_found", len(emails)))

	e.Evidence.Record(site, searched, emails, rec.Email)
	return rec, nil
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// titleSeparators split a <title> into site name and page tagline.
var titleSeparators = []string{"|", "–", "—", "::", " - ", "·"}

// companyName derives the company from the home page's og:site_name or
// first title segment, falling back to the title-cased second-level label.
func companyName(pages []domain.Page, site string) string {
	for _, p := range pages {
		u, err := url.Parse(p.URL)
		if err != nil || (u.Path != "" && u.Path != "/") {
			continue
		}
		if name := siteName(p.Body); name != "" {
			return name
		}
	}
	return labelToName(resolver.SecondLevelLabel(site))
}

func siteName(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 {
			title = title[:i]
		}
	}
	return strings.TrimSpace(title)
}

// labelToName turns "acme-corp" into "Acme Corp".
func labelToName(label string) string {
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

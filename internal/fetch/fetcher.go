// Package fetch implements the robots-aware, per-host-paced, cache-and-retry
// fetch layer. Its single promise to callers: Fetch never fails, it only
// degrades to an empty body.
package fetch

import (
	"context"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"github.com/midiakiasat/MAILSIEVE/internal/monitoring"
	"go.uber.org/zap"
)

// DefaultBodyCap bounds how much of a page body is kept.
const DefaultBodyCap = 1_800_000

// Options configures a PoliteFetcher.
type Options struct {
	Timeout      time.Duration
	Retries      int
	Backoff      time.Duration
	UserAgent    string
	ExtraHeaders map[string]string
	BodyCap      int64
}

// PoliteFetcher issues single conditional GETs under per-host pacing with
// a disk-backed cache and bounded retry.
type PoliteFetcher struct {
	client  *http.Client
	robots  *RobotsGate
	pacer   *HostPacer
	cache   *DiskCache
	opts    Options
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewPoliteFetcher(opts Options, robots *RobotsGate, pacer *HostPacer, cache *DiskCache, metrics *monitoring.Metrics, logger *zap.Logger) *PoliteFetcher {
	if opts.BodyCap <= 0 {
		opts.BodyCap = DefaultBodyCap
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &PoliteFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		robots:  robots,
		pacer:   pacer,
		cache:   cache,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch retrieves one URL. An empty Body means "no content": robots deny,
// non-HTML, or a failure that outlived the retry budget. It is never an
// error for the caller to propagate.
func (f *PoliteFetcher) Fetch(ctx context.Context, rawURL string) domain.FetchResult {
	res := domain.FetchResult{URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return res
	}

	if f.robots != nil && !f.robots.Allowed(rawURL, f.opts.UserAgent) {
		f.metrics.IncFetch("denied")
		f.logger.Debug("robots disallow", zap.String("url", rawURL))
		return res
	}

	cachedMeta, cachedBody, haveCache := f.cache.Get(rawURL)

	for attempt := 1; attempt <= f.opts.Retries; attempt++ {
		if f.pacer != nil {
			if err := f.pacer.Wait(ctx, u.Host); err != nil {
				return res
			}
		}

		body, meta, status, err := f.doRequest(ctx, rawURL, cachedMeta, haveCache)
		if err != nil {
			f.logger.Debug("fetch attempt failed",
				zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Error(err))
			if attempt < f.opts.Retries {
				if !f.backoffSleep(ctx, attempt) {
					return res
				}
				continue
			}
			f.metrics.IncFetch("failed")
			return res
		}

		switch {
		case status == http.StatusNotModified:
			if haveCache && isHTML(cachedMeta.ContentType) {
				f.metrics.IncFetch("cached")
				f.metrics.IncCacheHit()
				res.Body = string(cachedBody)
				res.Meta = cachedMeta
			}
			return res
		case !isHTML(meta.ContentType):
			// Not worth caching and not worth retrying.
			f.metrics.IncFetch("skipped")
			return res
		default:
			f.cache.Put(rawURL, meta, body)
			f.metrics.IncFetch("ok")
			res.Body = string(body)
			res.Meta = meta
			return res
		}
	}
	return res
}

// doRequest performs one conditional GET. A non-2xx, non-304 status is
// reported as an error so the retry loop treats it as transient.
func (f *PoliteFetcher) doRequest(ctx context.Context, rawURL string, cached domain.CacheMeta, conditional bool) ([]byte, domain.CacheMeta, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.CacheMeta{}, 0, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	for k, v := range f.opts.ExtraHeaders {
		req.Header.Set(k, v)
	}
	if conditional {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.CacheMeta{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, domain.CacheMeta{}, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.CacheMeta{}, resp.StatusCode, &statusError{status: resp.StatusCode, url: rawURL}
	}

	contentType := resp.Header.Get("Content-Type")
	meta := domain.CacheMeta{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  contentType,
		Encoding:     charsetOf(contentType),
	}
	if !isHTML(contentType) {
		return nil, meta, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.BodyCap))
	if err != nil && len(body) == 0 {
		return nil, meta, resp.StatusCode, err
	}
	return body, meta, resp.StatusCode, nil
}

func (f *PoliteFetcher) backoffSleep(ctx context.Context, attempt int) bool {
	sleep := f.opts.Backoff
	for i := 1; i < attempt; i++ {
		sleep *= 2
	}
	if sleep > 0 {
		sleep += time.Duration(rand.Int63n(int64(sleep)/2 + 1))
	}
	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.status) + " for " + e.url
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(contentType)
	}
	return strings.Contains(mt, "text/html") || strings.Contains(mt, "application/xhtml")
}

func charsetOf(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

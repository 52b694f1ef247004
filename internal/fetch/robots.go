package fetch

import (
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate fetches and memoizes robots.txt rules per origin. Politeness
// is best-effort: any fetch or parse failure leaves the origin permissive,
// so only an explicit Disallow ever blocks a crawl.
type RobotsGate struct {
	client *http.Client
	logger *zap.Logger

	mu    sync.Mutex
	rules map[string]*robotstxt.RobotsData // origin -> rules, nil = permissive
}

func NewRobotsGate(client *http.Client, logger *zap.Logger) *RobotsGate {
	return &RobotsGate{
		client: client,
		logger: logger,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched by agent.
func (g *RobotsGate) Allowed(rawURL, agent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	origin := u.Scheme + "://" + u.Host

	g.mu.Lock()
	data, seen := g.rules[origin]
	g.mu.Unlock()

	if !seen {
		data = g.fetchRules(origin)
		g.mu.Lock()
		g.rules[origin] = data
		g.mu.Unlock()
	}

	if data == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.FindGroup(agent).Test(path)
}

func (g *RobotsGate) fetchRules(origin string) *robotstxt.RobotsData {
	resp, err := g.client.Get(origin + "/robots.txt")
	if err != nil {
		g.logger.Debug("robots fetch failed, treating as permissive",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		g.logger.Debug("robots parse failed, treating as permissive",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}
	return data
}

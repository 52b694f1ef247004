// Package mx answers "does this domain receive mail" via DNS MX lookups.
package mx

import (
	"context"
	"net"
	"sync"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Gate reports whether a domain has at least one MX record. Implementations
// must be safe for concurrent use.
type Gate interface {
	HasMX(ctx context.Context, domain string) bool
}

// Resolver queries the system resolvers directly and memoizes answers for
// the process lifetime. Lookup failures count as "no MX": synthesis is an
// opt-in, not a default.
type Resolver struct {
	logger *zap.Logger

	mu    sync.Mutex
	known map[string]bool
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger, known: make(map[string]bool)}
}

func (r *Resolver) HasMX(ctx context.Context, domain string) bool {
	if domain == "" {
		return false
	}
	r.mu.Lock()
	if has, ok := r.known[domain]; ok {
		r.mu.Unlock()
		return has
	}
	r.mu.Unlock()

	has := r.lookup(ctx, domain)

	r.mu.Lock()
	r.known[domain] = has
	r.mu.Unlock()
	return has
}

func (r *Resolver) lookup(ctx context.Context, domain string) bool {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return r.lookupFallback(ctx, domain)
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	m.RecursionDesired = true

	server := net.JoinHostPort(conf.Servers[0], conf.Port)
	c := new(dns.Client)
	in, _, err := c.ExchangeContext(ctx, m, server)
	if err == nil && in.Truncated {
		// Large answers need the TCP retry.
		tcp := &dns.Client{Net: "tcp"}
		in, _, err = tcp.ExchangeContext(ctx, m, server)
	}
	if err != nil {
		r.logger.Debug("mx query failed, falling back to system resolver",
			zap.String("domain", domain), zap.Error(err))
		return r.lookupFallback(ctx, domain)
	}
	if in.Rcode != dns.RcodeSuccess {
		return false
	}
	for _, rr := range in.Answer {
		if _, ok := rr.(*dns.MX); ok {
			return true
		}
	}
	return false
}

func (r *Resolver) lookupFallback(ctx context.Context, domain string) bool {
	recs, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(recs) > 0
}

// Package resolver normalizes free-form input lines into registrable
// domains via public-suffix decomposition.
package resolver

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Resolve turns a line of text (URL, bare host, with optional scheme,
// www., path, or trailing comment) into a canonical registrable domain.
// Anything that cannot yield a host with an embedded dot resolves to "".
func Resolve(line string) string {
	host := cleanHost(line)
	if host == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Unknown suffix (internal TLDs, IPs); keep the cleaned host.
		return host
	}
	return etld1
}

func cleanHost(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if fields := strings.Fields(line); len(fields) > 0 {
		line = fields[0]
	}
	line = strings.ToLower(line)
	if i := strings.Index(line, "://"); i >= 0 {
		line = line[i+3:]
	}
	if i := strings.IndexAny(line, "/?"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "@"); i >= 0 {
		line = line[i+1:]
	}
	if i := strings.Index(line, ":"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimPrefix(line, "www.")
	line = strings.Trim(line, ".")
	if !strings.Contains(line, ".") {
		return ""
	}
	return line
}

// SecondLevelLabel returns the label directly under the public suffix,
// e.g. "acme" for "acme.co.uk". Used to spot names shadowing the company.
func SecondLevelLabel(domain string) string {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	rest := strings.TrimSuffix(domain, suffix)
	rest = strings.Trim(rest, ".")
	if rest == "" {
		parts := strings.Split(domain, ".")
		return parts[0]
	}
	parts := strings.Split(rest, ".")
	return parts[len(parts)-1]
}

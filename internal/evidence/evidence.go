// Package evidence appends one audit record per processed domain to a JSONL
// file. Page URLs are always hashed; emails are hashed only when configured.
// Every failure here is swallowed: auditing must never break processing.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

type record struct {
	Timestamp string   `json:"ts"`
	Domain    string   `json:"domain"`
	Pages     []string `json:"pages"`
	Emails    []string `json:"emails"`
	Chosen    string   `json:"chosen_email,omitempty"`
}

// Logger writes audit records. A nil Logger is valid and does nothing.
type Logger struct {
	path       string
	hashEmails bool
	log        *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

func NewLogger(path string, hashEmails bool, log *zap.Logger) *Logger {
	if path == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{path: path, hashEmails: hashEmails, log: log, now: time.Now}
}

// Record appends one line for the domain. Pages are stored as short hashes,
// never raw URLs. chosen is the final result email, raw, possibly empty.
func (l *Logger) Record(domain string, pages, emails []string, chosen string) {
	if l == nil {
		return
	}
	rec := record{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Domain:    domain,
		Pages:     hashAll(pages),
		Emails:    emails,
		Chosen:    chosen,
	}
	if l.hashEmails {
		rec.Emails = hashAll(emails)
	}
	if rec.Pages == nil {
		rec.Pages = []string{}
	}
	if rec.Emails == nil {
		rec.Emails = []string{}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.log.Debug("evidence open failed", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		l.log.Debug("evidence write failed", zap.Error(err))
	}
}

// Hash is the short identifier used in place of raw values.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

func hashAll(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Hash(v)
	}
	return out
}

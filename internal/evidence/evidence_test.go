package evidence

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readRecords(t *testing.T, path string) []record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open evidence: %v", err)
	}
	defer f.Close()

	var recs []record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad evidence line %q: %v", sc.Text(), err)
		}
		recs = append(recs, r)
	}
	return recs
}

func TestRecordHashesPagesNotEmails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	l := NewLogger(path, false, nil)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	l.Record("acme.com", []string{"https://acme.com/about"}, []string{"info@acme.com"}, "info@acme.com")

	recs := readRecords(t, path)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Domain != "acme.com" || r.Chosen != "info@acme.com" {
		t.Errorf("record = %+v", r)
	}
	if r.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("ts = %q", r.Timestamp)
	}
	if len(r.Pages) != 1 || strings.Contains(r.Pages[0], "acme.com") || len(r.Pages[0]) != 16 {
		t.Errorf("pages must be short hashes, got %v", r.Pages)
	}
	if len(r.Emails) != 1 || r.Emails[0] != "info@acme.com" {
		t.Errorf("emails must stay raw without hashing enabled, got %v", r.Emails)
	}
}

func TestRecordHashesEmailsWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	l := NewLogger(path, true, nil)
	l.Record("acme.com", nil, []string{"info@acme.com"}, "")

	recs := readRecords(t, path)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if got := recs[0].Emails[0]; got == "info@acme.com" || len(got) != 16 {
		t.Errorf("email not hashed: %q", got)
	}
	if recs[0].Emails[0] != Hash("info@acme.com") {
		t.Error("hash is not deterministic")
	}
}

func TestRecordAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	l := NewLogger(path, false, nil)
	l.Record("a.com", nil, nil, "")
	l.Record("b.com", nil, nil, "")

	recs := readRecords(t, path)
	if len(recs) != 2 || recs[0].Domain != "a.com" || recs[1].Domain != "b.com" {
		t.Errorf("records = %+v", recs)
	}
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	l := NewLogger(filepath.Join(t.TempDir(), "missing", "deep", "evidence.jsonl"), false, nil)
	l.Record("acme.com", nil, nil, "")

	var nilLogger *Logger
	nilLogger.Record("acme.com", nil, nil, "")
}

func TestDisabledLoggerIsNil(t *testing.T) {
	if NewLogger("", false, nil) != nil {
		t.Error("empty path must disable evidence logging")
	}
}

package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"github.com/midiakiasat/MAILSIEVE/internal/output"
)

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	block     chan struct{}
}

func (p *fakeProcessor) Process(_ context.Context, site string) (domain.ResultRecord, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.processed = append(p.processed, site)
	p.mu.Unlock()
	return domain.ResultRecord{Domain: site}, nil
}

func (p *fakeProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.processed...)
}

func TestLoadQueueNormalizesAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	body := "# header comment\n\nhttps://www.acme.com/about\nacme.com\nbeta.example.org\nnot-a-domain\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	queue, err := LoadQueue(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"acme.com", "example.org"}
	if len(queue) != len(want) {
		t.Fatalf("queue = %v, want %v", queue, want)
	}
	for i := range want {
		if queue[i] != want[i] {
			t.Errorf("queue[%d] = %q, want %q", i, queue[i], want[i])
		}
	}
}

func TestRunResumeSkipsProcessedDomains(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")
	w, err := output.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	w.Append(domain.ResultRecord{Domain: "acme.com"})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	processed, err := output.LoadProcessed(outPath)
	if err != nil {
		t.Fatal(err)
	}

	proc := &fakeProcessor{}
	w, err = output.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	o := &Orchestrator{Processor: proc, Writer: w, Concurrency: 2}
	if err := o.Run(context.Background(), []string{"acme.com", "beta.org"}, processed); err != nil {
		t.Fatal(err)
	}

	seen := proc.seen()
	if len(seen) != 1 || seen[0] != "beta.org" {
		t.Errorf("processed = %v, want only beta.org", seen)
	}
	p := o.Progress()
	if p.Resumed != 1 || p.Done != 1 {
		t.Errorf("progress = %+v", p)
	}
}

func TestStopPreventsNewLaunches(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")
	w, err := output.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}

	proc := &fakeProcessor{block: make(chan struct{})}
	o := &Orchestrator{Processor: proc, Writer: w, Concurrency: 1}

	done := make(chan error, 1)
	go func() {
		done <- o.Run(context.Background(), []string{"a.com", "b.com", "c.com"}, nil)
	}()

	// Let the first job start, then stop and release all jobs. With one
	// worker busy, the feed is mid-send on the second domain when the stop
	// fires, and that pending send must be abandoned too.
	time.Sleep(50 * time.Millisecond)
	o.Stop()
	close(proc.block)

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	seen := proc.seen()
	if len(seen) != 1 || seen[0] != "a.com" {
		t.Errorf("processed %v, want only the in-flight a.com", seen)
	}
	if !o.Progress().Stopping {
		t.Error("progress must report stopping")
	}
}

func TestRunWritesRecords(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := output.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}

	proc := &fakeProcessor{}
	o := &Orchestrator{Processor: proc, Writer: w, Concurrency: 3}
	if err := o.Run(context.Background(), []string{"a.com", "b.com", "c.com"}, nil); err != nil {
		t.Fatal(err)
	}

	got, err := output.LoadProcessed(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("output domains = %v, want 3", got)
	}
}

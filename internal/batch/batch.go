// Package batch drains a domain queue through the per-domain pipeline under
// a bounded concurrency limit, with resume and cooperative stop.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"github.com/midiakiasat/MAILSIEVE/internal/output"
	"github.com/midiakiasat/MAILSIEVE/internal/resolver"
)

// Processor runs the pipeline for one domain.
type Processor interface {
	Process(ctx context.Context, rawLine string) (domain.ResultRecord, error)
}

// Progress is a point-in-time snapshot for status reporting.
type Progress struct {
	Total    int  `json:"total"`
	Done     int  `json:"done"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
	Resumed  int  `json:"resumed"`
	InFlight int  `json:"in_flight"`
	Stopping bool `json:"stopping"`
}

type Orchestrator struct {
	Processor   Processor
	Writer      output.Writer
	Concurrency int
	Logger      *zap.Logger

	stopped  atomic.Bool
	stopOnce sync.Once

	mu       sync.Mutex
	stop     chan struct{}
	progress Progress
}

// stopChan lazily creates the channel so an Orchestrator built as a plain
// literal still stops correctly.
func (o *Orchestrator) stopChan() chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stop == nil {
		o.stop = make(chan struct{})
	}
	return o.stop
}

// Stop prevents new jobs from launching, including one already waiting for
// a free worker. In-flight jobs run to completion.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
	o.stopOnce.Do(func() { close(o.stopChan()) })
}

// Progress returns the current counters.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.progress
	p.Stopping = o.stopped.Load()
	return p
}

// LoadQueue reads the input list: blank lines and #-comments are dropped,
// each line is normalized, malformed lines are skipped, duplicates collapse
// to their first occurrence.
func LoadQueue(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var queue []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		site := resolver.Resolve(line)
		if site == "" || seen[site] {
			continue
		}
		seen[site] = true
		queue = append(queue, site)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return queue, nil
}

// Run drains the queue. Domains present in processed are skipped. Results
// go through the writer, which is flushed and closed before return.
func (o *Orchestrator) Run(ctx context.Context, queue []string, processed map[string]bool) error {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := o.Concurrency
	if workers < 1 {
		workers = 1
	}

	var todo []string
	resumed := 0
	for _, site := range queue {
		if processed[site] {
			resumed++
			continue
		}
		todo = append(todo, site)
	}

	o.mu.Lock()
	o.progress = Progress{Total: len(queue), Resumed: resumed}
	o.mu.Unlock()
	logger.Info("batch starting",
		zap.Int("queued", len(todo)),
		zap.Int("resumed", resumed),
		zap.Int("concurrency", workers))

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for site := range jobs {
				o.runOne(ctx, logger, site)
			}
		}()
	}

	stop := o.stopChan()
feed:
	for _, site := range todo {
		select {
		case <-stop:
			logger.Info("stop requested, not launching further domains")
			break feed
		default:
		}
		// The stop case also aborts a send already waiting for a worker.
		select {
		case jobs <- site:
		case <-stop:
			logger.Info("stop requested, not launching further domains")
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := o.Writer.Flush(); err != nil {
		o.Writer.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := o.Writer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	p := o.Progress()
	logger.Info("batch complete",
		zap.Int("done", p.Done),
		zap.Int("skipped", p.Skipped),
		zap.Int("failed", p.Failed),
		zap.Int("resumed", p.Resumed))
	return nil
}

func (o *Orchestrator) runOne(ctx context.Context, logger *zap.Logger, site string) {
	o.mu.Lock()
	o.progress.InFlight++
	o.mu.Unlock()

	rec, err := o.Processor.Process(ctx, site)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.InFlight--
	if err != nil {
		o.progress.Skipped++
		logger.Warn("domain skipped", zap.String("domain", site), zap.Error(err))
		return
	}
	if err := o.Writer.Append(rec); err != nil {
		o.progress.Failed++
		logger.Warn("write failed", zap.String("domain", site), zap.Error(err))
		return
	}
	o.progress.Done++
}

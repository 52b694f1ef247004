// Package output persists result records and reads them back for resume.
// The format follows the file extension: .tsv and .jsonl are recognized,
// anything else is CSV.
package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

// Writer serializes result records to the output file. Append is safe for
// concurrent use.
type Writer interface {
	Append(rec domain.ResultRecord) error
	Flush() error
	Close() error
}

var header = []string{"domain", "company", "owner", "email", "emails_found", "pages_searched"}

// Open creates or appends to the output file, picking the encoder by
// extension. An existing file keeps its rows so a resumed run extends it;
// the header is written only when the file starts empty.
func Open(path string) (Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat output %s: %w", path, err)
	}
	fresh := st.Size() == 0

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return &jsonlWriter{f: f, buf: bufio.NewWriter(f)}, nil
	case ".tsv":
		return newDelimited(f, '\t', fresh)
	default:
		return newDelimited(f, ',', fresh)
	}
}

type delimitedWriter struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

func newDelimited(f *os.File, comma rune, fresh bool) (*delimitedWriter, error) {
	w := csv.NewWriter(f)
	w.Comma = comma
	dw := &delimitedWriter{f: f, w: w}
	if fresh {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return dw, nil
}

func (d *delimitedWriter) Append(rec domain.ResultRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.Write([]string{
		rec.Domain,
		rec.Company,
		rec.Owner,
		rec.Email,
		strings.Join(rec.Evidence.EmailsFound, " "),
		strings.Join(rec.Evidence.PagesSearched, " "),
	})
}

func (d *delimitedWriter) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w.Flush()
	return d.w.Error()
}

func (d *delimitedWriter) Close() error {
	if err := d.Flush(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}

type jsonlWriter struct {
	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
}

func (j *jsonlWriter) Append(rec domain.ResultRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.buf.Write(line); err != nil {
		return err
	}
	return j.buf.WriteByte('\n')
}

func (j *jsonlWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.buf.Flush()
}

func (j *jsonlWriter) Close() error {
	if err := j.Flush(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

// LoadProcessed returns the set of domains already present in a prior
// output file. A missing file means an empty set; unreadable lines are
// skipped so a truncated row cannot block a resume.
func LoadProcessed(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer f.Close()

	done := make(map[string]bool)
	if strings.ToLower(filepath.Ext(path)) == ".jsonl" {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var rec domain.ResultRecord
			if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
				continue
			}
			if rec.Domain != "" {
				done[rec.Domain] = true
			}
		}
		return done, sc.Err()
	}

	r := csv.NewReader(f)
	if strings.ToLower(filepath.Ext(path)) == ".tsv" {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if len(row) == 0 || row[0] == "" || row[0] == "domain" {
			continue
		}
		done[row[0]] = true
	}
	return done, nil
}

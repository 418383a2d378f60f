// Package stats records model usage to a csv file.
package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mseshachalam/vector/app"
)

var header = []string{"Timestamp", "Model", "Input Tokens", "Output Tokens", "Duration (s)", "Type"}

// CSVRecorder appends one row per generator invocation.
type CSVRecorder struct {
	Path string

	mu sync.Mutex
	// now is swappable for tests.
	now func() time.Time
}

// NewCSVRecorder creates the file's directory and the header row when the
// file does not exist yet.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("stats: create %s: %w", filepath.Dir(path), err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("stats: create %s: %w", path, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return &CSVRecorder{Path: path, now: time.Now}, nil
}

// Record appends u to the stats file.
func (r *CSVRecorder) Record(u app.Usage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("stats: open %s: %w", r.Path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		r.now().Format("2006-01-02 15:04:05"),
		u.Model,
		strconv.Itoa(u.InputTokens),
		strconv.Itoa(u.OutputTokens),
		fmt.Sprintf("%.2f", u.Duration.Seconds()),
		u.Op,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

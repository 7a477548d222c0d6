// Package history persists completed hand records as JSON Lines, one
// record per line, append-only. A tournament's file replays to the
// exact pots and stacks the live hands produced.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tablestakes/sitngo/internal/game"
)

// Writer appends hand records to a JSONL file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// NewWriter opens (or creates) the history file for appending
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// WriteRecord appends one hand record and flushes it to disk
func (w *Writer) WriteRecord(rec game.HandRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	enc := json.NewEncoder(w.buf)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding hand %d: %w", rec.HandNumber, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flushing hand %d: %w", rec.HandNumber, err)
	}
	return nil
}

// Close flushes and closes the underlying file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// ReadAll loads every hand record from a history file
func ReadAll(path string) ([]game.HandRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var records []game.HandRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec game.HandRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return records, nil
}

// Verify replays every record in a history file against its recorded
// outcome.
func Verify(path string, eval game.Evaluator) error {
	records, err := ReadAll(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := game.VerifyRecord(rec, eval); err != nil {
			return fmt.Errorf("hand %d: %w", rec.HandNumber, err)
		}
	}
	return nil
}

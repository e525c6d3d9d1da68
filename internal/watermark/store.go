package watermark

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultPath is where the last-run timestamp lives unless overridden.
const DefaultPath = "lastrun.log"

// Epoch is returned when no previous run has been recorded.
var Epoch = time.Unix(0, 0).UTC()

// Store persists the timestamp of the last run.
type Store interface {
	Read() (time.Time, error)
	Write(ts time.Time) error
}

// StoreCorruptError means the watermark file holds something that is not a timestamp.
type StoreCorruptError struct {
	Path    string
	Content string
	Err     error
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("watermark %s: unparsable content %q: %v", e.Path, e.Content, e.Err)
}

func (e *StoreCorruptError) Unwrap() error { return e.Err }

// FileStore keeps the watermark as a single RFC 3339 line on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

// Read returns the persisted watermark. A missing or empty file reads as Epoch.
func (s *FileStore) Read() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Epoch, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark %s: %w", s.path, err)
	}

	content := strings.TrimSpace(string(raw))
	if content == "" {
		return Epoch, nil
	}

	ts, err := Parse(content)
	if err != nil {
		return time.Time{}, &StoreCorruptError{Path: s.path, Content: content, Err: err}
	}
	return ts, nil
}

// Write replaces the watermark with ts, stored in UTC.
func (s *FileStore) Write(ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file first, then rename so a crash never leaves a half-written stamp.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".lastrun-*.tmp")
	if err != nil {
		return fmt.Errorf("write watermark %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(Format(ts)); err != nil {
		tmp.Close()
		return fmt.Errorf("write watermark %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write watermark %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write watermark %s: %w", s.path, err)
	}
	return nil
}

// layouts accepted by Parse, most specific first. Naive forms are taken as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Parse reads an ISO-8601 timestamp as written by Format or by Python's isoformat().
func Parse(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Format renders ts the way it is persisted.
func Format(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu     sync.Mutex
	ts     time.Time
	set    bool
	writes int
}

// NewMemoryStore returns a MemoryStore seeded with ts. A zero ts reads as Epoch.
func NewMemoryStore(ts time.Time) *MemoryStore {
	return &MemoryStore{ts: ts, set: !ts.IsZero()}
}

func (m *MemoryStore) Read() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return Epoch, nil
	}
	return m.ts, nil
}

func (m *MemoryStore) Write(ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts = ts.UTC()
	m.set = true
	m.writes++
	return nil
}

// Writes reports how many times Write was called.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dannytech/default-server/internal/model"
)

// DefaultPattern matches every file name in the log directory.
const DefaultPattern = "*"

// timestampLayout is how remote clients stamp their file names.
const timestampLayout = "2006-01-02 15-04-05"

var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}-\d{2}-\d{2}`)

// Classification is the per-file decision for a single run.
type Classification struct {
	New   bool // forward its entries
	Stale bool // delete it
}

// ListCandidates returns the regular files directly inside dir whose names
// match pattern. Subdirectories are neither returned nor descended into.
// The order is whatever the filesystem listing yields.
func ListCandidates(dir, pattern string) ([]model.LogFile, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", pattern)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("log directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s: not a directory", dir)
	}

	names, err := doublestar.Glob(os.DirFS(dir), pattern,
		doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]model.LogFile, 0, len(names))
	for _, name := range names {
		// Patterns with separators could reach into subdirectories.
		if filepath.Base(name) != name {
			continue
		}
		path := filepath.Join(dir, name)
		st, err := os.Stat(path)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}

		f := model.LogFile{Path: path, Name: name}
		f.Timestamp, f.HasTimestamp = ParseTimestamp(name)
		files = append(files, f)
	}
	return files, nil
}

// ParseTimestamp extracts the first "YYYY-MM-DD HH-MM-SS" stamp from a file
// name and returns it as a UTC instant.
func ParseTimestamp(name string) (time.Time, bool) {
	m := timestampRe.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, m, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Cutoff returns the instant retention days before now. Files stamped
// strictly before it are stale. Calendar arithmetic keeps large retentions
// from overflowing a time.Duration.
func Cutoff(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, -days)
}

// Classify decides whether a file stamped ts is new relative to watermark
// and whether it falls before the retention cutoff. Both comparisons are strict.
func Classify(ts, watermark, cutoff time.Time) Classification {
	return Classification{
		New:   ts.After(watermark),
		Stale: ts.Before(cutoff),
	}
}

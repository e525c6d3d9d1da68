package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dannytech/default-server/internal/model"
)

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := &JSONReporter{enc: json.NewEncoder(&buf)}

	summary := model.RunSummary{
		LastRun:    time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC),
		Candidates: 4,
		New:        2,
		Purged:     1,
		Failures:   []model.FileFailure{{Name: "bad.log", Error: "boom"}},
	}

	if err := reporter.Begin(summary); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on Begin, got %q", buf.String())
	}
	if err := reporter.End(summary); err != nil {
		t.Fatal(err)
	}

	var got model.RunSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}
	if got.New != 2 || got.Purged != 1 || got.Candidates != 4 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].Name != "bad.log" {
		t.Errorf("expected one failure for bad.log, got %+v", got.Failures)
	}
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewTextReporterTo(&buf)

	summary := model.RunSummary{
		LastRun:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Candidates: 3,
		New:        1,
		Purged:     2,
	}
	if err := reporter.Begin(summary); err != nil {
		t.Fatal(err)
	}
	if err := reporter.End(summary); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"Script last run on Jan 02 2024 at 03:04:05 UTC",
		"Logs to process:",
		"Beginning processing...",
		"Processing complete",
		"New logs:",
		"Purged logs:",
	} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestJSONReporterAbort(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporterTo(&buf)

	summary := model.RunSummary{Candidates: 3, New: 2, Notified: 1, Error: "notify b.log: webhook returned status 500"}
	if err := reporter.Abort(summary); err != nil {
		t.Fatal(err)
	}

	var got model.RunSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}
	if got.Error != summary.Error {
		t.Errorf("expected error %q, got %q", summary.Error, got.Error)
	}
	if got.New != 2 || got.Notified != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
}

func TestJSONReporterOmitsErrorOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporterTo(&buf)

	if err := reporter.End(model.RunSummary{New: 1}); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
		t.Errorf("expected no error field, got %s", buf.String())
	}
}

func TestTextReporterAbort(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewTextReporterTo(&buf)

	if err := reporter.Abort(model.RunSummary{New: 1, Error: "remove old.log: permission denied"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Processing aborted:",
		"remove old.log: permission denied",
		"New logs:",
		"Purged logs:",
	} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if bytes.Contains([]byte(out), []byte("Processing complete")) {
		t.Errorf("aborted run must not report completion, got:\n%s", out)
	}
}

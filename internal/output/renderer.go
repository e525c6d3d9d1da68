package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dannytech/default-server/internal/model"
)

// Reporter prints the progress of a run to the console. A run calls Begin
// once the files are listed, then either End or, when it stops on an error,
// Abort with the partial summary.
type Reporter interface {
	Begin(summary model.RunSummary) error
	End(summary model.RunSummary) error
	Abort(summary model.RunSummary) error
}

// ---------------------------------------------------------------------------
// Text Reporter (styled terminal output)
// ---------------------------------------------------------------------------

var (
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	styleCount   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true) // cyan
	stylePurged  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))           // yellow
	styleFailure = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// lastRunLayout matches the banner of the original cron script.
const lastRunLayout = "Jan 02 2006 at 15:04:05 MST"

// TextReporter writes human-readable progress lines.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter returns a Reporter that writes to stdout.
func NewTextReporter() *TextReporter {
	return NewTextReporterTo(os.Stdout)
}

// NewTextReporterTo returns a TextReporter writing to w.
func NewTextReporterTo(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Begin(s model.RunSummary) error {
	_, err := fmt.Fprintf(r.w, "%s\n%s %s\n%s\n",
		styleLabel.Render("Script last run on "+s.LastRun.UTC().Format(lastRunLayout)),
		styleLabel.Render("Logs to process:"), styleCount.Render(fmt.Sprint(s.Candidates)),
		styleLabel.Render("Beginning processing..."),
	)
	return err
}

func (r *TextReporter) End(s model.RunSummary) error {
	if _, err := fmt.Fprintf(r.w, "%s\n%s %s\n%s %s\n",
		styleLabel.Render("Processing complete"),
		styleLabel.Render("New logs:"), styleCount.Render(fmt.Sprint(s.New)),
		styleLabel.Render("Purged logs:"), stylePurged.Render(fmt.Sprint(s.Purged)),
	); err != nil {
		return err
	}
	for _, f := range s.Failures {
		if _, err := fmt.Fprintf(r.w, "%s %s: %s\n", styleFailure.Render("skipped"), f.Name, f.Error); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) Abort(s model.RunSummary) error {
	_, err := fmt.Fprintf(r.w, "%s %s\n%s %s\n%s %s\n",
		styleFailure.Render("Processing aborted:"), s.Error,
		styleLabel.Render("New logs:"), styleCount.Render(fmt.Sprint(s.New)),
		styleLabel.Render("Purged logs:"), stylePurged.Render(fmt.Sprint(s.Purged)),
	)
	return err
}

// ---------------------------------------------------------------------------
// JSON Reporter (one summary object for scripting)
// ---------------------------------------------------------------------------

// JSONReporter prints only the final summary as a single JSON object.
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter returns a Reporter that writes JSON to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterTo(os.Stdout)
}

// NewJSONReporterTo returns a JSONReporter writing to w.
func NewJSONReporterTo(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Begin(model.RunSummary) error { return nil }

func (r *JSONReporter) End(s model.RunSummary) error {
	return r.enc.Encode(s)
}

// Abort prints the partial summary; its error field says why the run stopped.
func (r *JSONReporter) Abort(s model.RunSummary) error {
	return r.enc.Encode(s)
}

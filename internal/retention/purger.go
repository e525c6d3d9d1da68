package retention

import (
	"fmt"
	"os"

	"github.com/dannytech/default-server/internal/model"
)

// DefaultDays is how long log files are kept unless configured otherwise.
const DefaultDays = 2

// Remover deletes a file from disk.
type Remover interface {
	Remove(path string) error
}

// OSRemover removes files with os.Remove.
type OSRemover struct{}

func (OSRemover) Remove(path string) error { return os.Remove(path) }

// Purger deletes log files that fell out of the retention window.
type Purger struct {
	remover Remover
}

// NewPurger returns a Purger using r, or the real filesystem when r is nil.
func NewPurger(r Remover) *Purger {
	if r == nil {
		r = OSRemover{}
	}
	return &Purger{remover: r}
}

// Purge deletes f unconditionally. Callers decide staleness.
func (p *Purger) Purge(f model.LogFile) error {
	if err := p.remover.Remove(f.Path); err != nil {
		return fmt.Errorf("purge %s: %w", f.Path, err)
	}
	return nil
}

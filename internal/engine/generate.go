package engine

import (
	"log"
	"strings"

	"github.com/dm/statusbadge/internal/badge"
	"github.com/dm/statusbadge/internal/format"
	"github.com/dm/statusbadge/internal/model"
)

// BadgeStore persists rendered badges.
type BadgeStore interface {
	// Clear removes all previously written badges.
	Clear() (int, error)
	// Write stores one badge under the given file stem and returns its path.
	Write(stem string, svg []byte) (string, error)
}

// Result describes one badge written (or not) by a Generator.
type Result struct {
	Entry model.Entry
	Path  string
	Size  int
	Err   error
}

// Generator turns extracted statuses into badge files.
type Generator struct {
	cleaner *format.Cleaner
	store   BadgeStore
	logger  *log.Logger
}

// NewGenerator returns a Generator writing to store. A nil cleaner uses the
// default vocabulary.
func NewGenerator(cleaner *format.Cleaner, store BadgeStore, logger *log.Logger) *Generator {
	if cleaner == nil {
		cleaner = format.NewCleaner(format.DefaultCleanerTerms)
	}
	return &Generator{cleaner: cleaner, store: store, logger: logger}
}

// Prepare derives the display name, color and file stem for a raw record.
func (g *Generator) Prepare(label, status string) model.Entry {
	name := strings.ReplaceAll(g.cleaner.Clean(label, status), "_", " ")
	return model.Entry{
		Label:    label,
		Name:     name,
		Status:   status,
		Color:    badge.ColorFor(status),
		Filename: format.SanitizeFilename(name),
	}
}

// Debug writes a single badge for an explicit service and status. Existing
// badges are left in place.
func (g *Generator) Debug(label, status string) Result {
	g.logger.Printf("debug mode: generating badge for service=%q status=%q", label, status)
	return g.write(g.Prepare(label, status))
}

// Generate replaces the badge set with one badge per record, in record
// order. Records whose names sanitize to the same file stem overwrite each
// other; the last one wins. Write failures are logged and reported in the
// corresponding Result without stopping the run.
func (g *Generator) Generate(set *model.StatusSet) []Result {
	g.logger.Printf("found %d services (including potential error statuses)", set.Len())

	if n, err := g.store.Clear(); err != nil {
		g.logger.Printf("clearing existing badges failed: %v", err)
	} else {
		g.logger.Printf("cleared %d existing badges", n)
	}

	results := make([]Result, 0, set.Len())
	for _, rec := range set.Records() {
		results = append(results, g.write(g.Prepare(rec.Label, rec.Status)))
	}

	if set.ScrapeFailed() {
		g.logger.Printf("scraping process encountered an error")
	}
	return results
}

func (g *Generator) write(e model.Entry) Result {
	svg := badge.Render(e.Name, e.Status, e.Color).SVG()
	path, err := g.store.Write(e.Filename, svg)
	if err != nil {
		g.logger.Printf("writing badge failed (service=%q): %v", e.Name, err)
		return Result{Entry: e, Path: path, Err: err}
	}
	g.logger.Printf("original key %q, status %q -> display %q, file %s, color %s",
		e.Label, e.Status, e.Name, path, e.Color)
	return Result{Entry: e, Path: path, Size: len(svg)}
}

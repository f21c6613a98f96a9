package format

import (
	"regexp"
	"strings"
)

// DefaultServiceName is returned by Clean when the label is nothing but status wording.
const DefaultServiceName = "Service"

// DefaultCleanerTerms is the status vocabulary stripped from scraped labels.
var DefaultCleanerTerms = []string{
	"healthy", "operational", "ok", "all systems operational",
	"degraded performance", "partial outage", "major outage",
	"under maintenance", "investigating", "monitoring", "failed",
	"unavailable", "down",
}

var trailingSeparators = regexp.MustCompile(`[-:,` + spaceClass + `]+$`)

// termPatterns removes one vocabulary term from a label.
type termPatterns struct {
	trailing *regexp.Regexp // "Name - term" at the end, before an optional final newline
	paren    *regexp.Regexp // "(... term ...)" anywhere
	bracket  *regexp.Regexp // "[... term ...]" anywhere
}

func compileTerm(term string) termPatterns {
	q := regexp.QuoteMeta(term)
	ws := `[` + spaceClass + `]*`
	return termPatterns{
		trailing: regexp.MustCompile(`(?i)` + ws + `[-:]?` + ws + q + `\n?$`),
		paren:    regexp.MustCompile(`(?i)` + ws + `\([^)]*` + q + `[^)]*\)`),
		bracket:  regexp.MustCompile(`(?i)` + ws + `\[[^\]]*` + q + `[^\]]*\]`),
	}
}

func (p termPatterns) strip(s string) string {
	s = p.trailing.ReplaceAllString(s, "")
	s = p.paren.ReplaceAllString(s, "")
	return p.bracket.ReplaceAllString(s, "")
}

// Cleaner recovers a service name from a scraped label that has status
// wording mixed into it. A Cleaner is safe for concurrent use.
type Cleaner struct {
	terms []termPatterns
}

// NewCleaner precompiles the given vocabulary. Terms are matched
// case-insensitively and applied in order.
func NewCleaner(terms []string) *Cleaner {
	c := &Cleaner{terms: make([]termPatterns, 0, len(terms))}
	for _, t := range terms {
		if t == "" {
			continue
		}
		c.terms = append(c.terms, compileTerm(strings.ToLower(t)))
	}
	return c
}

// Clean strips vocabulary terms from the end of label and from any
// parenthesised or bracketed segment. A non-empty knownStatus is stripped as
// well, for this call only. Occurrences in the middle of the label are kept.
func (c *Cleaner) Clean(label, knownStatus string) string {
	name := label
	for _, p := range c.terms {
		name = p.strip(name)
	}
	if knownStatus != "" {
		name = compileTerm(strings.ToLower(knownStatus)).strip(name)
	}

	name = trailingSeparators.ReplaceAllString(name, "")
	name = trimSpace(name)
	if name == "" {
		return DefaultServiceName
	}
	return name
}

var defaultCleaner = NewCleaner(DefaultCleanerTerms)

// CleanServiceName cleans label with the default vocabulary.
func CleanServiceName(label, knownStatus string) string {
	return defaultCleaner.Clean(label, knownStatus)
}

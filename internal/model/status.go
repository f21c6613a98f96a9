package model

// ScrapingStatusLabel is the label of the synthetic entry that stands in for
// a failed or empty scrape.
const ScrapingStatusLabel = "Scraping Status"

// ErrorKind is the status text shown on the synthetic Scraping Status badge.
type ErrorKind string

const (
	ErrExecution  ErrorKind = "Execution Error"
	ErrTimeout    ErrorKind = "Timeout Error"
	ErrUnexpected ErrorKind = "Unexpected Error"
	ErrNoData     ErrorKind = "No Data"
)

// Record is one (label, status) pair as extracted from the status page.
type Record struct {
	Label  string
	Status string
}

// StatusSet is an ordered label → status mapping. Setting an existing label
// overwrites its status but keeps its original position.
type StatusSet struct {
	order  []string
	status map[string]string
}

// NewStatusSet returns an empty StatusSet.
func NewStatusSet() *StatusSet {
	return &StatusSet{status: make(map[string]string)}
}

// ErrorSet returns the single-entry set {"Scraping Status": kind}.
func ErrorSet(kind ErrorKind) *StatusSet {
	s := NewStatusSet()
	s.Set(ScrapingStatusLabel, string(kind))
	return s
}

// Set records status for label.
func (s *StatusSet) Set(label, status string) {
	if _, ok := s.status[label]; !ok {
		s.order = append(s.order, label)
	}
	s.status[label] = status
}

// Get returns the status recorded for label.
func (s *StatusSet) Get(label string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.status[label]
	return v, ok
}

// Len returns the number of distinct labels. A nil set is empty.
func (s *StatusSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Records returns the records in first-insertion order.
func (s *StatusSet) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, Record{Label: label, Status: s.status[label]})
	}
	return out
}

// ScrapeFailed reports whether the set carries a Scraping Status error other
// than No Data.
func (s *StatusSet) ScrapeFailed() bool {
	v, ok := s.Get(ScrapingStatusLabel)
	return ok && v != string(ErrNoData)
}

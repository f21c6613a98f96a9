package engine

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/dm/statusbadge/internal/model"
)

// MockFetcher implements StatusFetcher for testing.
type MockFetcher struct {
	FetchFn func(ctx context.Context, url string) (*model.StatusSet, error)
}

func (m *MockFetcher) FetchStatuses(ctx context.Context, url string) (*model.StatusSet, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx, url)
	}
	return setOf("API", "Operational"), nil
}

// MockSource implements client.PageSource for testing.
type MockSource struct {
	HTML string
	Err  error
	URLs []string
}

func (m *MockSource) FetchHTML(_ context.Context, url string) (string, error) {
	m.URLs = append(m.URLs, url)
	return m.HTML, m.Err
}

// setOf builds a StatusSet from label, status pairs.
func setOf(pairs ...string) *model.StatusSet {
	s := model.NewStatusSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i], pairs[i+1])
	}
	return s
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var errMockFailure = errors.New("mock failure")

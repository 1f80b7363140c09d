// Package memory is an in-process ReportWriter for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"fintrack/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	writes  int
	reports map[int64]sheets.Report
}

var _ sheets.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{reports: make(map[int64]sheets.Report)}
}

// WriteReport keeps the latest report per user.
func (s *Store) WriteReport(_ context.Context, r sheets.Report) (string, error) {
	if len(r.Rows) == 0 {
		return "", errors.New("report has no rows")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Rows = slices.Clone(r.Rows)
	s.reports[r.UserID] = r
	s.writes++
	return fmt.Sprintf("mem:%d:%d", r.UserID, s.writes), nil
}

// Report returns the last report written for userID.
func (s *Store) Report(userID int64) (sheets.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[userID]
	return r, ok
}

// Writes returns how many reports were written in total.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cryptofolio/internal/core"
	ports "cryptofolio/internal/sheets"
)

var _ ports.HistoryMirror = (*Store)(nil)

// Store is an in-process mirror used in development and tests.
type Store struct {
	mu   sync.Mutex
	rows []core.HistoryRecord
}

func New() *Store {
	return &Store{}
}

// AppendHistory stores the row and returns a synthetic row reference.
func (s *Store) AppendHistory(_ context.Context, r core.HistoryRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ReadHistory(_ context.Context, portfolioID int64) ([]core.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.HistoryRecord, 0, len(s.rows))
	for _, r := range s.rows {
		if portfolioID == 0 || r.OwnerID == portfolioID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Len is the number of appended rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

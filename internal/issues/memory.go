package issues

import (
	"context"
	"sync"

	"github.com/crucial707/school-issues/internal/models"
)

// MemoryStore is a process-wide issue list shared by every session. Its
// contents are lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	issues []models.Issue
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, issue models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, issue)
	return nil
}

func (s *MemoryStore) ListBySubmitter(_ context.Context, username string) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Issue
	for _, is := range s.issues {
		if is.Submitter == username {
			out = append(out, is)
		}
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.issues), nil
}

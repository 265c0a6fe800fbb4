package store

import (
	"context"
	"sync"

	"github.com/sendo-kakeru/image-resize/internal/domain"
)

type MemoryUsageStore struct {
	mu   sync.Mutex
	logs []domain.UsageLog
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{}
}

func (s *MemoryUsageStore) CreateUsageLog(_ context.Context, usage domain.UsageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, usage)
	return nil
}

func (s *MemoryUsageStore) Logs() []domain.UsageLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UsageLog, len(s.logs))
	copy(out, s.logs)
	return out
}

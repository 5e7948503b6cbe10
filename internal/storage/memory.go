package storage

import (
	"context"
	"sort"
	"sync"

	"archipelago/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]model.RunRecord
	history map[string][]float64
	stats   map[string][]model.GenerationStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]float64)
	s.stats = make(map[string][]model.GenerationStats)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt == runs[j].CreatedAt {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt < runs[j].CreatedAt
	})
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationStats(_ context.Context, runID string, generations []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationStats, len(generations))
	copy(copied, generations)
	s.stats[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationStats(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	generations, ok := s.stats[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationStats, len(generations))
	copy(copied, generations)
	return copied, true, nil
}

package storage

import (
	"context"

	"archipelago/internal/model"
)

// Store persists run-history records: run metadata, best-fitness
// trajectories and per-generation statistics, keyed by run ID. It never
// persists populations themselves.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationStats(ctx context.Context, runID string, generations []model.GenerationStats) error
	GetGenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
}

//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"archipelago/internal/model"
)

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "archipelago.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		Label:           "onemax",
		GenomeLen:       100,
		PopSize:         50,
		Generations:     50,
		Seed:            42,
		BestFitness:     97,
		CreatedAt:       "2026-01-02T03:04:05Z",
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", run.ID)
	}
	if loaded.ID != run.ID || loaded.BestFitness != run.BestFitness {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("unexpected run listing: %+v", runs)
	}

	history := []float64{0.5, 0.7, 0.9}
	if err := store.SaveFitnessHistory(ctx, run.ID, history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	loadedHistory, ok, err := store.GetFitnessHistory(ctx, run.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected fitness history run-1")
	}
	if len(loadedHistory) != len(history) || loadedHistory[1] != history[1] {
		t.Fatalf("unexpected history loaded: %+v", loadedHistory)
	}

	generations := []model.GenerationStats{
		{Generation: 1, BestFitness: 0.7, MeanFitness: 0.5, FitnessVar: 0.02, Evaluations: 48, ScopingScale: 0.98},
	}
	if err := store.SaveGenerationStats(ctx, run.ID, generations); err != nil {
		t.Fatalf("save generation stats: %v", err)
	}
	loadedStats, ok, err := store.GetGenerationStats(ctx, run.ID)
	if err != nil {
		t.Fatalf("get generation stats: %v", err)
	}
	if !ok {
		t.Fatal("expected generation stats run-1")
	}
	if len(loadedStats) != 1 || loadedStats[0].Generation != 1 {
		t.Fatalf("unexpected generation stats loaded: %+v", loadedStats)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "archipelago.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "persisted-run",
		CreatedAt:       "2026-01-01T00:00:00Z",
	}
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != run.ID {
		t.Fatalf("expected persisted run, got ok=%t value=%+v", ok, loaded)
	}
}

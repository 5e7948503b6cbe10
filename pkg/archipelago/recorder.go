package archipelago

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"archipelago/internal/model"
	"archipelago/internal/storage"
)

// Store persists run histories; see the storage backends behind
// NewStore. The sqlite backend needs the "sqlite" build tag.
type Store = storage.Store

// NewStore opens a run-history store: "memory" (default) or "sqlite"
// with a database path.
func NewStore(kind, path string) (Store, error) {
	return storage.NewStore(kind, path)
}

// CloseStore closes a store when its backend supports it.
func CloseStore(store Store) error {
	return storage.Close(store)
}

// Recorder captures a run's per-generation statistics through the
// Observer hook and persists them, with the run's metadata, under a
// fresh run ID. Island runs publish from several populations, so
// Observe is safe for concurrent use.
//
//	store, _ := archipelago.NewStore("memory", "")
//	_ = store.Init(ctx)
//	rec := archipelago.NewRecorder(store, "onemax")
//	pop, _ := archipelago.NewPopulation(proto, nil, fit,
//		archipelago.WithObserver(rec.Observe))
//	...
//	err := rec.Commit(ctx, pop, 50)
type Recorder struct {
	store storage.Store
	runID string
	label string

	mu      sync.Mutex
	history []float64
	stats   []model.GenerationStats
}

func NewRecorder(store Store, label string) *Recorder {
	return &Recorder{
		store: store,
		runID: uuid.NewString(),
		label: label,
	}
}

// RunID returns the identifier the run's records are stored under.
func (r *Recorder) RunID() string {
	return r.runID
}

// Observe is the Observer to register on every population the run
// touches. The fitness history keeps, per generation index, the best
// fitness reported by any island.
func (r *Recorder) Observe(st GenerationStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = append(r.stats, st)
	for len(r.history) <= st.Generation {
		r.history = append(r.history, math.Inf(-1))
	}
	if st.BestFitness > r.history[st.Generation] {
		r.history[st.Generation] = st.BestFitness
	}
}

// Commit persists a standalone population's run.
func (r *Recorder) Commit(ctx context.Context, p *Population, generations int) error {
	if p.best == nil {
		return fmt.Errorf("%w: nothing to record before evaluation", ErrState)
	}
	return r.save(ctx, model.RunRecord{
		GenomeLen:   p.schema.Len(),
		PopSize:     p.Len(),
		Generations: generations,
		Seed:        p.seed,
		BestFitness: p.best.Fitness,
	})
}

// CommitIslands persists an island model's run.
func (r *Recorder) CommitIslands(ctx context.Context, m *IslandModel, generations int) error {
	best := m.Best()
	if best == nil {
		return fmt.Errorf("%w: nothing to record before evaluation", ErrState)
	}
	return r.save(ctx, model.RunRecord{
		GenomeLen:   m.islands[0].schema.Len(),
		PopSize:     m.Size(),
		Islands:     len(m.islands),
		Generations: generations,
		Seed:        m.islands[0].seed,
		BestFitness: best.Fitness,
	})
}

func (r *Recorder) save(ctx context.Context, run model.RunRecord) error {
	run.VersionedRecord = model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	run.ID = r.runID
	run.Label = r.label
	run.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	r.mu.Lock()
	history := append([]float64(nil), r.history...)
	generations := make([]model.GenerationStats, len(r.stats))
	copy(generations, r.stats)
	r.mu.Unlock()

	if err := r.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", r.runID, err)
	}
	if err := r.store.SaveFitnessHistory(ctx, r.runID, history); err != nil {
		return fmt.Errorf("save fitness history %s: %w", r.runID, err)
	}
	if err := r.store.SaveGenerationStats(ctx, r.runID, generations); err != nil {
		return fmt.Errorf("save generation stats %s: %w", r.runID, err)
	}
	return nil
}

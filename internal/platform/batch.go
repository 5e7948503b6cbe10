package platform

import (
	"context"
	"errors"
	"sync"

	"archipelago/internal/genome"
	"archipelago/internal/model"
)

// Task is one isolated unit of parallel work: evolving a single
// island's snapshot for one batch of generations. Run must not touch
// state shared with other tasks; everything it needs travels inside
// the closure by value or deep copy, and everything it produces comes
// back in the Result.
type Task struct {
	Island int
	Run    func(ctx context.Context) (Result, error)
}

// Result carries one island's evolved state back to the coordinator.
type Result struct {
	Island      int
	Members     []*genome.Individual
	Best        *genome.Individual
	Evaluations int
	Stats       []model.GenerationStats
}

// RunBatch dispatches one worker per task and joins them all before
// returning, so callers see a synchronization barrier: no result is
// observable until every worker of the batch has finished. Results are
// ordered by task index. A worker failure is fatal to the batch; the
// lowest-indexed error is returned after the join and no task is
// retried.
func RunBatch(ctx context.Context, tasks []Task) ([]Result, error) {
	if len(tasks) == 0 {
		return nil, errors.New("platform: no tasks to run")
	}

	type outcome struct {
		idx    int
		result Result
		err    error
	}

	outcomes := make(chan outcome, len(tasks))

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(idx int, t Task) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				outcomes <- outcome{idx: idx, err: err}
				return
			}
			result, err := t.Run(ctx)
			outcomes <- outcome{idx: idx, result: result, err: err}
		}(i, task)
	}

	wg.Wait()
	close(outcomes)

	results := make([]Result, len(tasks))
	var firstErr error
	firstIdx := len(tasks)
	for out := range outcomes {
		if out.err != nil {
			if out.idx < firstIdx {
				firstErr = out.err
				firstIdx = out.idx
			}
			continue
		}
		results[out.idx] = out.result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

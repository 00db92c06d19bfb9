package evolution

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/simulation"
)

// pairTask is a single pairing to evaluate, row as player A.
type pairTask struct {
	row, col int
	seed     int64
}

// pairTasks lists every unordered pair (i, j), i < j, in row-major order.
// Each pair's seed is derived from the master seed and the pair's position,
// so results do not depend on worker scheduling.
func pairTasks(n int, seed int64) []pairTask {
	seeds := simulation.MatchSeeds(seed, n*n)
	tasks := make([]pairTask, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			tasks = append(tasks, pairTask{row: i, col: j, seed: seeds[i*n+j]})
		}
	}
	return tasks
}

// evaluatePairs plays every pair on a bounded worker pool. Each pair's
// matches run serially inside its worker. done is called under a lock.
func (t *Tournament) evaluatePairs(ctx context.Context, roster []engine.Strategy, done func(PairResult)) error {
	workers := t.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, task := range pairTasks(len(roster), t.Config.Seed) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, b := roster[task.row], roster[task.col]
			results, err := simulation.RunBatch(a, b, t.Config.SampleSize, t.Match, simulation.BatchOptions{Seed: task.seed})
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", a.Name(), b.Name(), err)
			}
			stats := simulation.Aggregate(results)

			mu.Lock()
			defer mu.Unlock()
			done(PairResult{
				Row:     task.row,
				Col:     task.col,
				Stats:   stats,
				Value:   t.score(stats.Player0Wins, stats.Draws, stats.TotalMatches),
				Reverse: t.score(stats.Player1Wins, stats.Draws, stats.TotalMatches),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

package worker

import (
	"context"
	"fmt"
	"runtime"

	"github.com/andresmejia3/blankmap/internal/types"
	"golang.org/x/sync/errgroup"
)

// Pool runs per-image jobs with a bounded number of concurrent engines.
type Pool struct {
	Size int
}

// NewPool creates a pool. A size below 1 falls back to GOMAXPROCS.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{Size: size}
}

// Run executes fn for every task. The first failing task cancels the context
// handed to the others and its error is returned. onDone, if set, is called
// after each successful task and may be invoked from several goroutines.
func (p *Pool) Run(ctx context.Context, tasks []types.AreaTask, fn func(context.Context, types.AreaTask) error, onDone func(types.AreaTask)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size)

	for _, task := range tasks {
		// Stop scheduling once something failed or the user hit Ctrl+C
		if gctx.Err() != nil {
			break
		}
		task := task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, task); err != nil {
				return fmt.Errorf("task %d (%s): %w", task.Index, task.Source, err)
			}
			if onDone != nil {
				onDone(task)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/resque/stats"
)

// Info is a point-in-time summary of the engine's data.
type Info struct {
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Queues    int   `json:"queues"`
	Workers   int   `json:"workers"`
}

// Info gathers queue sizes, counters and registry sizes concurrently. The
// snapshot is not atomic across keys.
func (eng *Engine) Info(ctx context.Context) (*Info, error) {
	queues, err := eng.queues.List(ctx)
	if err != nil {
		return nil, err
	}

	info := &Info{Queues: len(queues)}
	var pending atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queues {
		g.Go(func() error {
			n, err := eng.queues.Size(gctx, q)
			if err != nil {
				return err
			}
			pending.Add(n)
			return nil
		})
	}
	g.Go(func() error {
		n, err := eng.stats.Get(stats.Processed).Value(gctx)
		info.Processed = n
		return err
	})
	g.Go(func() error {
		n, err := eng.stats.Get(stats.Failed).Value(gctx)
		info.Failed = n
		return err
	})
	g.Go(func() error {
		ws, err := eng.workers.List(gctx)
		info.Workers = len(ws)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resque/engine: info: %w", err)
	}
	info.Pending = pending.Load()
	return info, nil
}

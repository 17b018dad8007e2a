package sim

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/altihold/internal/config"
)

// Outcome is one member of an ensemble. Err holds a per-run failure such
// as divergence; it does not stop the other runs.
type Outcome struct {
	Config *config.Config
	Result *Result
	Err    error
}

// Ensemble runs independent configurations concurrently. Each run owns
// its loop and solver, so nothing is shared between workers.
type Ensemble struct {
	log     *zap.Logger
	workers int
}

func NewEnsemble(log *zap.Logger, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ensemble{log: log, workers: workers}
}

// Run returns one outcome per config, in input order. Only context
// cancellation aborts the ensemble.
func (e *Ensemble) Run(ctx context.Context, cfgs []*config.Config) ([]Outcome, error) {
	outcomes := make([]Outcome, len(cfgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := New(cfg, e.log).Run(gctx)
			outcomes[i] = Outcome{Config: cfg, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

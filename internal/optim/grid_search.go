package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/metrics"
	"github.com/san-kum/altihold/internal/sim"
)

// GridSearch sweeps the initial gains over a Cartesian grid. Every grid
// point is an independent run of the base configuration.
type GridSearch struct {
	KP, KI, KD []float64
	Workers    int
}

func NewGridSearch(kp, ki, kd []float64) *GridSearch {
	return &GridSearch{KP: kp, KI: ki, KD: kd}
}

// Point is the outcome of one grid point. Diverged runs keep their error
// and rank after every finished run.
type Point struct {
	KP, KI, KD float64
	FinalEZ    float64
	Settling   float64
	Saturation float64
	Warnings   int
	Err        error
}

func (p Point) Diverged() bool { return p.Err != nil }

// Size is the number of runs the sweep performs.
func (g *GridSearch) Size() int { return len(g.KP) * len(g.KI) * len(g.KD) }

func (g *GridSearch) configs(base *config.Config) []*config.Config {
	cfgs := make([]*config.Config, 0, g.Size())
	for _, kp := range g.KP {
		for _, ki := range g.KI {
			for _, kd := range g.KD {
				cfg := base.Clone()
				cfg.InitState.KP, cfg.InitState.KI, cfg.InitState.KD = kp, ki, kd
				cfg.Logger.TraceEvaluations = false
				cfgs = append(cfgs, cfg)
			}
		}
	}
	return cfgs
}

// Search runs the grid and returns the points ranked by final |eZ|, then
// by settling time. Unsettled runs rank after settled ones.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, log *zap.Logger) ([]Point, error) {
	if g.Size() == 0 {
		return nil, fmt.Errorf("empty gain grid")
	}

	outcomes, err := sim.NewEnsemble(log, g.Workers).Run(ctx, g.configs(base))
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(outcomes))
	for i, o := range outcomes {
		s := o.Config.InitState
		p := Point{KP: s.KP, KI: s.KI, KD: s.KD, Err: o.Err}
		if o.Err == nil {
			p.FinalEZ = o.Result.Summary.FinalEZ
			p.Settling = o.Result.Metrics["settling_time"]
			p.Saturation = o.Result.Metrics["saturation_fraction"]
			p.Warnings = len(o.Result.Warnings)
		}
		points[i] = p
	}

	Rank(points)
	return points, nil
}

// Rank orders points best first.
func Rank(points []Point) {
	settleKey := func(p Point) float64 {
		if p.Settling == metrics.NotSettled {
			return math.Inf(1)
		}
		return p.Settling
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.Diverged() != b.Diverged() {
			return !a.Diverged()
		}
		if ea, eb := math.Abs(a.FinalEZ), math.Abs(b.FinalEZ); ea != eb {
			return ea < eb
		}
		return settleKey(a) < settleKey(b)
	})
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

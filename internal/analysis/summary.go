package analysis

import (
	"math"

	"github.com/san-kum/altihold/internal/dynamo"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a diagnostic into a few scalars. Means are weighted
// by sample spacing because solver grids are not uniform.
type Summary struct {
	Samples         int     `json:"samples"`
	Horizon         float64 `json:"horizon"`
	FinalEZ         float64 `json:"final_ez"`
	MaxAbsEZ        float64 `json:"max_abs_ez"`
	MeanV           float64 `json:"mean_v"`
	PeakV           float64 `json:"peak_v"`
	FinalV          float64 `json:"final_v"`
	MeanVDot        float64 `json:"mean_vdot"`
	StdVDot         float64 `json:"std_vdot"`
	DescentFraction float64 `json:"descent_fraction"`
	Drift           Drift   `json:"gain_drift"`
}

// Drift is the change of each adaptive gain over the run.
type Drift struct {
	KP float64 `json:"kp"`
	KI float64 `json:"ki"`
	KD float64 `json:"kd"`
}

// GainDrift compares the gains of the last sample with the first.
func GainDrift(traj *dynamo.Trajectory) Drift {
	if traj.Len() == 0 {
		return Drift{}
	}
	first, last := traj.States[0], traj.States[traj.Len()-1]
	return Drift{
		KP: last[dynamo.IdxKP] - first[dynamo.IdxKP],
		KI: last[dynamo.IdxKI] - first[dynamo.IdxKI],
		KD: last[dynamo.IdxKD] - first[dynamo.IdxKD],
	}
}

// TimeWeights returns trapezoid weights for a strictly increasing grid.
// A single sample gets weight 1.
func TimeWeights(times []float64) []float64 {
	n := len(times)
	w := make([]float64, n)
	switch n {
	case 0:
		return w
	case 1:
		w[0] = 1
		return w
	}

	w[0] = 0.5 * (times[1] - times[0])
	for i := 1; i < n-1; i++ {
		w[i] = 0.5 * (times[i+1] - times[i-1])
	}
	w[n-1] = 0.5 * (times[n-1] - times[n-2])
	return w
}

func Summarize(d *Diagnostics) Summary {
	n := d.Len()
	if n == 0 {
		return Summary{}
	}

	w := TimeWeights(d.Times)
	total := floats.Sum(w)

	s := Summary{
		Samples: n,
		Horizon: d.Times[n-1] - d.Times[0],
		FinalEZ: d.EZ[n-1],
		PeakV:   floats.Max(d.V),
		FinalV:  d.V[n-1],
		MeanV:   stat.Mean(d.V, w),
	}
	s.MeanVDot, s.StdVDot = stat.PopMeanStdDev(d.VDot, w)

	for i, e := range d.EZ {
		s.MaxAbsEZ = math.Max(s.MaxAbsEZ, math.Abs(e))
		if d.VDot[i] < 0 {
			s.DescentFraction += w[i]
		}
	}
	if total > 0 {
		s.DescentFraction /= total
	}

	return s
}

package storage

import (
	"io"

	"github.com/san-kum/altihold/internal/analysis"
)

type ExportData struct {
	ID          string             `json:"id,omitempty"`
	Integrator  string             `json:"integrator"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Diagnostics ExportDiagnostics  `json:"diagnostics"`
	Summary     analysis.Summary   `json:"summary"`
	Metrics     map[string]float64 `json:"metrics"`
}

type ExportDiagnostics struct {
	EZ   []float64 `json:"e_z"`
	EV   []float64 `json:"e_v"`
	U    []float64 `json:"u"`
	V    []float64 `json:"V"`
	VDot []float64 `json:"Vdot"`
}

// ExportJSON writes a run with its recomputed diagnostic as one JSON
// document.
func ExportJSON(w io.Writer, run *Run, d *analysis.Diagnostics, metrics map[string]float64) error {
	data := ExportData{
		ID:         run.Meta.ID,
		Integrator: run.Meta.Integrator,
		Steps:      run.Trajectory.Len(),
		Times:      run.Trajectory.Times,
		States:     make([][]float64, run.Trajectory.Len()),
		Diagnostics: ExportDiagnostics{
			EZ:   d.EZ,
			EV:   d.EV,
			U:    d.U,
			V:    d.V,
			VDot: d.VDot,
		},
		Summary: analysis.Summarize(d),
		Metrics: metrics,
	}
	data.Summary.Drift = analysis.GainDrift(run.Trajectory)

	for i, s := range run.Trajectory.States {
		data.States[i] = []float64(s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

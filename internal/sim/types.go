package sim

import (
	"time"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
)

// Warning is a numerical concern about a finished run. Runs with
// warnings still succeed.
type Warning struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
	Limit   float64 `json:"limit"`
}

const WarnSaturation = "saturation"

// Analysis is everything derived from a trajectory after integration.
type Analysis struct {
	Diagnostics *analysis.Diagnostics
	Summary     analysis.Summary
	Metrics     map[string]float64
	Warnings    []Warning
}

type Result struct {
	Trajectory *dynamo.Trajectory
	Analysis
	Elapsed time.Duration
}

// Package metrics accumulates scalar figures of merit over a diagnosed
// trajectory. Every metric sees the samples in time order.
package metrics

import "github.com/san-kum/altihold/internal/dynamo"

// DefaultSettlingBand is the |eZ| band used by Standard.
const DefaultSettlingBand = 5.0

// Standard returns the metrics collected on every run.
func Standard(uMin, uMax float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewSaturation(uMin, uMax),
		NewControlEffort(),
		NewSettling(DefaultSettlingBand),
		NewDescent(),
	}
}

// Values collects the metrics by name.
func Values(ms []dynamo.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

package metrics

// timeAverage integrates a sampled signal with the trapezoid rule so that
// non-uniform solver grids weigh each sample by the time it covers.
type timeAverage struct {
	area  float64
	span  float64
	last  float64
	lastT float64
	n     int
}

func (a *timeAverage) add(t, val float64) {
	if a.n > 0 {
		dt := t - a.lastT
		a.area += 0.5 * dt * (a.last + val)
		a.span += dt
	}
	a.last = val
	a.lastT = t
	a.n++
}

// value is the mean over the observed span. A single sample is its own mean.
func (a *timeAverage) value() float64 {
	switch {
	case a.n == 0:
		return 0
	case a.span <= 0:
		return a.last
	}
	return a.area / a.span
}

func (a *timeAverage) reset() { *a = timeAverage{} }

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

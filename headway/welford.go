package headway

import "math"

// welford accumulates running mean and variance using Welford's online
// algorithm, numerically stable for long headway series.
type welford struct {
	count int
	mean  float64
	m2    float64
}

func (w *welford) update(v float64) {
	w.count++
	delta := v - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (v - w.mean)
}

// stdDev is the sample standard deviation (n-1 denominator).
func (w *welford) stdDev() float64 {
	if w.count < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.count-1))
}

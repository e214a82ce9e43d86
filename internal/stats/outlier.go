package stats

// OutlierIndex tags rows whose value lies outside the *running*
// mean +/- 3 sigma estimate (spec.md §4.5 "Outlier index"). False
// positives during warm-up are accepted here; the profile builder
// re-filters candidates against the final mean/std_dev at finalize.
type OutlierIndex struct {
	candidates []candidateOutlier
}

type candidateOutlier struct {
	rowIndex uint64
	value    float64
}

// NewOutlierIndex returns an empty candidate tracker.
func NewOutlierIndex() *OutlierIndex {
	return &OutlierIndex{}
}

// Check evaluates value against the running moments and, if it falls
// outside [mean-3sigma, mean+3sigma], records it as a candidate.
func (o *OutlierIndex) Check(rowIndex uint64, value float64, m *Moments) {
	if m.Count() < 2 {
		return
	}
	sigma := m.StdDev()
	if sigma == 0 {
		return
	}
	mean := m.Mean()
	if value < mean-3*sigma || value > mean+3*sigma {
		o.candidates = append(o.candidates, candidateOutlier{rowIndex: rowIndex, value: value})
	}
}

// Finalize re-filters every candidate against the final mean/std_dev and
// returns the ascending row indices that survive.
func (o *OutlierIndex) Finalize(finalMean, finalStdDev float64) []uint64 {
	if finalStdDev == 0 {
		return nil
	}
	var out []uint64
	lo, hi := finalMean-3*finalStdDev, finalMean+3*finalStdDev
	for _, c := range o.candidates {
		if c.value < lo || c.value > hi {
			out = append(out, c.rowIndex)
		}
	}
	return out
}

package stats

import "math/rand"

// reservoirSizeDefault bounds the exact-recount sample kept alongside the
// sketch-based top-k (spec.md §4.5: "re-counted exactly by scanning... the
// sampled reservoir, to remove over-estimation artifacts").
const reservoirSizeDefault = 200

// Reservoir implements Algorithm R: a uniform random sample of fixed size
// from a stream of unknown length.
type Reservoir struct {
	size    int
	seen    uint64
	samples []string
	rng     *rand.Rand
}

// NewReservoir allocates a reservoir of the given capacity.
func NewReservoir(size int) *Reservoir {
	if size <= 0 {
		size = reservoirSizeDefault
	}
	return &Reservoir{
		size:    size,
		samples: make([]string, 0, size),
		rng:     rand.New(rand.NewSource(1)),
	}
}

// Add offers one value to the reservoir.
func (r *Reservoir) Add(s string) {
	r.seen++
	if len(r.samples) < r.size {
		r.samples = append(r.samples, s)
		return
	}
	j := r.rng.Int63n(int64(r.seen))
	if j < int64(r.size) {
		r.samples[j] = s
	}
}

// Samples returns the current sample set.
func (r *Reservoir) Samples() []string {
	return r.samples
}

// ExactCounts tallies the sample's values, used to re-rank sketch-based
// top-k candidates at finalize.
func (r *Reservoir) ExactCounts() map[string]uint64 {
	counts := make(map[string]uint64, len(r.samples))
	for _, s := range r.samples {
		counts[s]++
	}
	return counts
}

package stats

import (
	"container/heap"
	"hash/fnv"
	"math"
)

const (
	cmsWidthDefault = 2048
	cmsDepthDefault = 4
	topKSize        = 10
)

// CountMinSketch is a probabilistic frequency estimator that never
// underestimates (spec.md §4.5 Top-k).
type CountMinSketch struct {
	width   int
	depth   int
	table   [][]uint64
	seeds   []uint64
}

// NewCountMinSketch allocates a width x depth sketch.
func NewCountMinSketch(width, depth int) *CountMinSketch {
	if width <= 0 {
		width = cmsWidthDefault
	}
	if depth <= 0 {
		depth = cmsDepthDefault
	}
	table := make([][]uint64, depth)
	for i := range table {
		table[i] = make([]uint64, width)
	}
	seeds := make([]uint64, depth)
	for i := range seeds {
		seeds[i] = uint64(1469598103934665603 + i*1099511628211)
	}
	return &CountMinSketch{width: width, depth: depth, table: table, seeds: seeds}
}

func (c *CountMinSketch) indexFor(row int, s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(c.seeds[row]), byte(c.seeds[row] >> 8)})
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(c.width))
}

// Add increments the estimated count for s.
func (c *CountMinSketch) Add(s string) {
	for row := 0; row < c.depth; row++ {
		idx := c.indexFor(row, s)
		c.table[row][idx]++
	}
}

// Estimate returns the (over-)estimated frequency of s.
func (c *CountMinSketch) Estimate(s string) uint64 {
	min := uint64(math.MaxUint64)
	for row := 0; row < c.depth; row++ {
		v := c.table[row][c.indexFor(row, s)]
		if v < min {
			min = v
		}
	}
	return min
}

// heapItem is one candidate in the top-k min-heap. seq is the candidate's
// first-seen order, assigned once when the value first enters the heap and
// never touched again, so tie-breaking by seq survives later heap.Fix
// reshuffles of the underlying array (spec.md §4.5 Top-k first-seen order).
type heapItem struct {
	value string
	count uint64
	seq   int
}

type minHeap []heapItem

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool   { return h[i].count < h[j].count }
func (h minHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{})  { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK tracks the top candidate values seen via a Count-Min Sketch plus a
// bounded min-heap, re-counted exactly at finalize (spec.md §4.5 Top-k).
type TopK struct {
	sketch  *CountMinSketch
	heap    minHeap
	present map[string]int // value -> index in heap, for refresh-in-place
	k       int
	nextSeq int
}

// NewTopK returns a tracker bounded to k candidates.
func NewTopK(k int) *TopK {
	if k <= 0 {
		k = topKSize
	}
	return &TopK{
		sketch:  NewCountMinSketch(cmsWidthDefault, cmsDepthDefault),
		present: make(map[string]int, k),
		k:       k,
	}
}

// Add increments the sketch and refreshes the heap if s's estimate now
// exceeds the current minimum tracked candidate.
func (t *TopK) Add(s string) {
	t.sketch.Add(s)
	estimate := t.sketch.Estimate(s)

	if idx, ok := t.present[s]; ok {
		t.heap[idx].count = estimate
		heap.Fix(&t.heap, idx)
		t.reindex()
		return
	}

	if len(t.heap) < t.k {
		heap.Push(&t.heap, heapItem{value: s, count: estimate, seq: t.nextSeq})
		t.nextSeq++
		t.reindex()
		return
	}

	if estimate > t.heap[0].count {
		delete(t.present, t.heap[0].value)
		t.heap[0] = heapItem{value: s, count: estimate, seq: t.nextSeq}
		t.nextSeq++
		heap.Fix(&t.heap, 0)
		t.present[s] = 0
		t.reindex()
	}
}

func (t *TopK) reindex() {
	for i, item := range t.heap {
		t.present[item.value] = i
	}
}

// Candidate is one top-k entry exposed to callers outside this package.
type Candidate struct {
	Value string
	Count uint64
	Seq   int // first-seen order, for tie-breaking ties by insertion order
}

// Candidates returns the tracked items, sketch-estimated counts attached.
// Finalize (internal/profiler) re-counts these exactly using the retained
// reservoir sample before emitting categorical_stats.
func (t *TopK) Candidates() []Candidate {
	out := make([]Candidate, len(t.heap))
	for i, item := range t.heap {
		out[i] = Candidate{Value: item.value, Count: item.count, Seq: item.seq}
	}
	return out
}

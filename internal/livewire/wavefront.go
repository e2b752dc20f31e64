package livewire

import "container/heap"

// Ordering selects the key the wavefront is ordered by.
type Ordering int

const (
	// OrderByCost pops the node with the lowest cumulative cost first.
	// This is standard Dijkstra and the ordering used for tracing.
	OrderByCost Ordering = iota
	// OrderBySeedDistance pops the node closest to the seed (squared
	// Euclidean distance) first. Closed nodes are final under this ordering
	// too, so the result is a spanning tree but not a minimum-cost one.
	OrderBySeedDistance
)

// String returns the ordering name used in logs and tool output.
func (o Ordering) String() string {
	switch o {
	case OrderByCost:
		return "cost"
	case OrderBySeedDistance:
		return "seed-distance"
	default:
		return "unknown"
	}
}

// frontEntry is one heap entry. Entries are never updated in place: an
// improved node is pushed again and the stale entry is discarded when popped.
type frontEntry struct {
	idx int32
	key int64
	seq uint64
}

// wavefront is a min-heap of frontEntry ordered by key, then by insertion
// sequence.
type wavefront struct {
	entries []frontEntry
	next    uint64
}

func (w *wavefront) Len() int { return len(w.entries) }

func (w *wavefront) Less(i, j int) bool {
	a, b := w.entries[i], w.entries[j]
	if a.key != b.key {
		return a.key < b.key
	}
	return a.seq < b.seq
}

func (w *wavefront) Swap(i, j int) { w.entries[i], w.entries[j] = w.entries[j], w.entries[i] }

func (w *wavefront) Push(x any) { w.entries = append(w.entries, x.(frontEntry)) }

func (w *wavefront) Pop() any {
	n := len(w.entries)
	e := w.entries[n-1]
	w.entries = w.entries[:n-1]
	return e
}

// push inserts idx with the given key.
func (w *wavefront) push(idx int32, key int64) {
	heap.Push(w, frontEntry{idx: idx, key: key, seq: w.next})
	w.next++
}

// pop removes and returns the entry with the smallest key.
func (w *wavefront) pop() frontEntry {
	return heap.Pop(w).(frontEntry)
}

// reset empties the heap but keeps its backing array for the next seed.
func (w *wavefront) reset() {
	w.entries = w.entries[:0]
	w.next = 0
}

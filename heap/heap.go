// Package heap implements a bounded ordering heap: a min-heap of
// staged payload blocks keyed by transmitter frame number, ties broken
// by insertion order, so equal frame numbers pop in arrival order (see
// Less below).
package heap

import (
	stdheap "container/heap"
)

// Node is a single staged block awaiting flush: the frame number it
// was stamped with, an offset into the staging buffer it lives in, and
// whether its CRC checked out. Its validity window ends at the next
// flush, when the staging buffer generation advances.
type Node struct {
	FrameNumber int32
	Offset      int
	CRCValid    bool

	seq int // insertion order, used to break FrameNumber ties
}

// innerHeap adapts []Node to container/heap.Interface. Kept unexported:
// callers only ever see the Ordering type below.
type innerHeap []Node

func (h innerHeap) Len() int { return len(h) }
func (h innerHeap) Less(i, j int) bool {
	if h[i].FrameNumber != h[j].FrameNumber {
		return h[i].FrameNumber < h[j].FrameNumber
	}
	return h[i].seq < h[j].seq
}
func (h innerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *innerHeap) Push(x interface{}) {
	*h = append(*h, x.(Node))
}

func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Ordering is a bounded min-heap of staged blocks. It is preallocated
// to Capacity and never grows past it: the staging buffer is flushed
// (and the heap drained) before it would ever need to, so pushing
// beyond Capacity is a programming error, not a runtime condition to
// recover from.
type Ordering struct {
	h        innerHeap
	capacity int
	nextSeq  int
}

// NewOrdering preallocates an Ordering heap for the given capacity.
// Callers size capacity as ⌈packet_buffer_size / payload_block_size⌉ + 1,
// enough to stage a full buffer's worth of blocks plus one margin slot.
func NewOrdering(capacity int) *Ordering {
	return &Ordering{
		h:        make(innerHeap, 0, capacity),
		capacity: capacity,
	}
}

// Capacity returns the heap's preallocated bound.
func (o *Ordering) Capacity() int { return o.capacity }

// Len returns the number of staged nodes currently held.
func (o *Ordering) Len() int { return len(o.h) }

// Push stages a node for later ordered delivery. It panics if the heap
// is already at capacity — the staging buffer's pre-flush headroom
// check guarantees this never happens in practice.
func (o *Ordering) Push(n Node) {
	if len(o.h) >= o.capacity {
		panic("heap: push beyond preallocated capacity")
	}
	n.seq = o.nextSeq
	o.nextSeq++
	stdheap.Push(&o.h, n)
}

// Pop removes and returns the node with the smallest frame number
// (ties broken by insertion order). It reports false when the heap is
// empty.
func (o *Ordering) Pop() (Node, bool) {
	if len(o.h) == 0 {
		return Node{}, false
	}
	n := stdheap.Pop(&o.h).(Node)
	return n, true
}

// Peek returns the node that would be returned by Pop, without
// removing it. Used by Flush to read the root's frame number as the
// initial "expected_frame" before popping begins.
func (o *Ordering) Peek() (Node, bool) {
	if len(o.h) == 0 {
		return Node{}, false
	}
	return o.h[0], true
}

// Teardown resets the heap to empty, ready for reuse or for discarding
// after a capture ends. It also restarts the insertion counter used
// for tie-breaking; ties only matter within a single flush, so this
// does not affect ordering.
func (o *Ordering) Teardown() {
	o.h = o.h[:0]
	o.nextSeq = 0
}

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestOrderingPopAscending(t *testing.T) {
	o := NewOrdering(8)
	for _, fn := range []int32{2, 0, 3, 1} {
		o.Push(Node{FrameNumber: fn})
	}

	var got []int32
	for {
		n, ok := o.Pop()
		if !ok {
			break
		}
		got = append(got, n.FrameNumber)
	}
	assert.Equal(t, []int32{0, 1, 2, 3}, got)
}

func TestOrderingTiesBreakByInsertionOrder(t *testing.T) {
	o := NewOrdering(8)
	o.Push(Node{FrameNumber: 5, Offset: 100})
	o.Push(Node{FrameNumber: 5, Offset: 200})

	first, ok := o.Pop()
	assert.True(t, ok)
	assert.Equal(t, 100, first.Offset)

	second, ok := o.Pop()
	assert.True(t, ok)
	assert.Equal(t, 200, second.Offset)
}

func TestOrderingPeekDoesNotRemove(t *testing.T) {
	o := NewOrdering(4)
	o.Push(Node{FrameNumber: 9})
	peeked, ok := o.Peek()
	assert.True(t, ok)
	assert.Equal(t, int32(9), peeked.FrameNumber)
	assert.Equal(t, 1, o.Len())
}

func TestOrderingPushBeyondCapacityPanics(t *testing.T) {
	o := NewOrdering(1)
	o.Push(Node{FrameNumber: 1})
	assert.Panics(t, func() {
		o.Push(Node{FrameNumber: 2})
	})
}

func TestOrderingTeardownEmpties(t *testing.T) {
	o := NewOrdering(4)
	o.Push(Node{FrameNumber: 1})
	o.Teardown()
	assert.Equal(t, 0, o.Len())
	_, ok := o.Pop()
	assert.False(t, ok)
}

// TestOrderingDrainsInAscendingOrder checks that for any sequence of
// frame numbers pushed within capacity, Pop always drains them in
// non-decreasing frame-number order and the heap never exceeds its
// preallocated capacity.
func TestOrderingDrainsInAscendingOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		n := rapid.IntRange(0, capacity).Draw(t, "n")

		o := NewOrdering(capacity)
		for i := 0; i < n; i++ {
			fn := rapid.Int32Range(-1000, 1000).Draw(t, "frameNumber")
			o.Push(Node{FrameNumber: fn})
			if o.Len() > o.Capacity() {
				t.Fatalf("heap grew past capacity: len=%d capacity=%d", o.Len(), o.Capacity())
			}
		}

		var prev int32
		first := true
		count := 0
		for {
			node, ok := o.Pop()
			if !ok {
				break
			}
			if !first {
				if node.FrameNumber < prev {
					t.Fatalf("pop returned out-of-order frame numbers: %d after %d", node.FrameNumber, prev)
				}
			}
			prev = node.FrameNumber
			first = false
			count++
		}
		if count != n {
			t.Fatalf("expected to drain %d nodes, drained %d", n, count)
		}
	})
}

package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupObserve(t *testing.T) {
	d := newRecentIDs(8)

	assert.False(t, d.Observe("m1"))
	assert.True(t, d.Observe("m1"))
	assert.False(t, d.Observe("m2"))
	assert.True(t, d.Observe("m1"))
	assert.True(t, d.Observe("m2"))
}

func TestDedupEvictsOldestAtLimit(t *testing.T) {
	d := newRecentIDs(3)

	d.Observe("a")
	d.Observe("b")
	d.Observe("c")
	// "a" is the oldest; observing "d" pushes it out of the window.
	assert.False(t, d.Observe("d"))
	assert.False(t, d.Observe("a"), "evicted id reads as new again")

	// "c" is still inside the window.
	assert.True(t, d.Observe("c"))
}

func TestDedupLargeChurnStaysBounded(t *testing.T) {
	d := newRecentIDs(16)
	for i := 0; i < 1000; i++ {
		d.Observe(fmt.Sprintf("m%d", i))
	}
	assert.Len(t, d.order, 16)
	assert.Len(t, d.seen, 16)
}

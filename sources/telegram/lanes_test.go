package telegram

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaneRunsInArrivalOrder(t *testing.T) {
	pool := newLanes()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 100; i++ {
		i := i
		pool.enqueue(7, func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	pool.wait()

	require.Len(t, order, 100)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestLanesDoNotBlockEachOther(t *testing.T) {
	pool := newLanes()

	release := make(chan struct{})
	second := make(chan struct{})

	pool.enqueue(1, func() { <-release })
	pool.enqueue(2, func() { close(second) })

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("independent identity was starved by a busy lane")
	}

	close(release)
	pool.wait()
}

func TestLaneIsReapedWhenDrained(t *testing.T) {
	pool := newLanes()

	done := make(chan struct{})
	pool.enqueue(5, func() { close(done) })
	<-done
	pool.wait()

	pool.mu.Lock()
	_, alive := pool.m[5]
	pool.mu.Unlock()
	assert.False(t, alive)
}

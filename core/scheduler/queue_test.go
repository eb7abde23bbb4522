package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewJobQueue()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	assert.Equal(t, 3, q.Len())
	for _, want := range []int64{1, 2, 3} {
		id, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, id)
	}
	assert.Zero(t, q.Len())
}

func TestQueuePopBlocksUntilEnqueue(t *testing.T) {
	q := NewJobQueue()

	got := make(chan int64, 1)
	go func() {
		id, ok := q.Pop()
		if ok {
			got <- id
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(7)

	select {
	case id := <-got:
		assert.Equal(t, int64(7), id)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Enqueue")
	}
}

func TestQueueClose(t *testing.T) {
	q := NewJobQueue()
	q.Enqueue(1)
	q.Close()

	// queued work still drains after close
	id, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	_, ok = q.Pop()
	assert.False(t, ok)

	// enqueue after close is dropped
	q.Enqueue(2)
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueueCloseWakesBlockedPop(t *testing.T) {
	q := NewJobQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Close")
	}
}

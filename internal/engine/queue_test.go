package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/ir"
)

func TestInputQueue_FIFO(t *testing.T) {
	q := newInputQueue()

	require.True(t, q.Enqueue(KeyDown("A")))
	require.True(t, q.Enqueue(KeyUp("A")))
	require.True(t, q.Enqueue(InputEvent{Type: EventSwitch, Mode: "Mining"}))
	assert.Equal(t, 3, q.Len())

	e, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, KeyDown("A"), e)

	e, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, EventKeyUp, e.Type)

	e, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "Mining", e.Mode)

	_, ok = q.TryDequeue()
	assert.False(t, ok, "empty queue")
	assert.Equal(t, 0, q.Len())
}

func TestInputQueue_Close(t *testing.T) {
	q := newInputQueue()
	q.Enqueue(KeyDown("A"))
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(KeyDown("B")), "enqueue after close")
	e, ok := q.TryDequeue()
	require.True(t, ok, "queued events survive close")
	assert.Equal(t, ir.KeyID("A"), e.Key)
}

func TestInputQueue_ThreadSafe(t *testing.T) {
	q := newInputQueue()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(KeyDown("X"))
			}
		}()
	}

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for received < producers*perProducer {
			if _, ok := q.TryDequeue(); ok {
				received++
				continue
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer timeout")
	}
	assert.Equal(t, producers*perProducer, received)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "down", EventKeyDown.String())
	assert.Equal(t, "up", EventKeyUp.String())
	assert.Equal(t, "cancel", EventCancel.String())
	assert.Equal(t, "switch", EventSwitch.String())
	assert.Equal(t, "unknown", EventType(0).String())
}

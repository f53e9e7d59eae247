package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(LogEvent("first"))
	q.Push(LogEvent("second"))
	q.Push(CompleteEvent([]byte("{}"), "resume.pdf"))

	ev, ok := q.Pop(time.Second)
	require.True(t, ok)
	assert.Equal(t, "first", ev.Data)

	ev, ok = q.Pop(time.Second)
	require.True(t, ok)
	assert.Equal(t, "second", ev.Data)

	ev, ok = q.Pop(time.Second)
	require.True(t, ok)
	assert.Equal(t, EventComplete, ev.Type)
	assert.Equal(t, "resume.pdf", ev.Filename)
}

func TestQueuePopTimeout(t *testing.T) {
	q := NewQueue()

	start := time.Now()
	ev, ok := q.Pop(20 * time.Millisecond)

	assert.False(t, ok)
	assert.Equal(t, Event{}, ev)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestQueuePushNeverBlocks(t *testing.T) {
	q := NewQueue()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Push(LogEvent("line"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pushes blocked without a consumer")
	}
	assert.Equal(t, 1000, q.Len())
}

func TestQueuePopWakesOnPush(t *testing.T) {
	q := NewQueue()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(LogEvent("late"))
	}()

	start := time.Now()
	ev, ok := q.Pop(2 * time.Second)

	require.True(t, ok)
	assert.Equal(t, "late", ev.Data)
	assert.Less(t, time.Since(start), time.Second)
}

func TestQueueStaleWakeToken(t *testing.T) {
	q := NewQueue()
	q.Push(LogEvent("only"))

	_, ok := q.Pop(time.Second)
	require.True(t, ok)

	// The wake token from the push may still be buffered; Pop must not
	// treat it as an event.
	_, ok = q.Pop(20 * time.Millisecond)
	assert.False(t, ok)
}

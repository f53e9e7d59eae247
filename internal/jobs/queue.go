package jobs

import (
	"sync"
	"time"
)

// Queue is an unbounded FIFO of events connecting a job's worker to its
// stream reader. Push never blocks the producer. The queue has no close
// operation: consumers stop pulling after a terminal event.
type Queue struct {
	mu   sync.Mutex
	list []Event
	wake chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Push appends an event and wakes a waiting consumer.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.list = append(q.list, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest event, waiting up to timeout for
// one to arrive. The boolean is false when the wait expired with
// nothing queued; the caller treats that as "no message yet", not as
// end of stream.
func (q *Queue) Pop(timeout time.Duration) (Event, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.list) > 0 {
			ev := q.list[0]
			q.list = q.list[1:]
			q.mu.Unlock()
			return ev, true
		}
		q.mu.Unlock()

		// The wake channel may hold a stale token from an event that
		// was already consumed, so re-check the list after every wake.
		select {
		case <-q.wake:
		case <-deadline.C:
			return Event{}, false
		}
	}
}

// Len reports the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.list)
}

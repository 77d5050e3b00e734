package events

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity is the number of events retained when no capacity is given.
const DefaultCapacity = 1000

// Bus is an append-only, capacity-bounded event log. Publishing never fails
// and never blocks on consumers; once the buffer exceeds capacity the oldest
// events are forgotten. Delivery to subscribers is driven by id comparison,
// so a consumer already positioned past an evicted id is unaffected.
type Bus struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buf      []Event
	counter  uint64
}

// NewBus creates a bus retaining at most capacity events. A capacity <= 0
// falls back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Bus{capacity: capacity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish assigns the next id and the current UTC timestamp, appends the
// event, and wakes every waiting subscriber. Safe for concurrent use.
func (b *Bus) Publish(category Category, payload map[string]any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.counter++
	ev := Event{
		ID:        b.counter,
		Timestamp: time.Now().UTC(),
		Category:  category,
		Payload:   payload,
	}
	b.buf = append(b.buf, ev)
	if len(b.buf) > b.capacity {
		// Keep the newest capacity entries. Copy so the evicted prefix can
		// be collected instead of pinning the old backing array.
		kept := make([]Event, b.capacity)
		copy(kept, b.buf[len(b.buf)-b.capacity:])
		b.buf = kept
	}
	b.cond.Broadcast()
	return ev
}

// Snapshot returns a consistent point-in-time copy of the retained events,
// oldest first.
func (b *Bus) Snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.buf))
	copy(out, b.buf)
	return out
}

// LastID returns the id of the most recently published event, 0 if none.
func (b *Bus) LastID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counter
}

// Reset clears the buffer and the id counter. Intended for tests and for
// explicit operator-driven restarts of the monitoring surface.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = nil
	b.counter = 0
	b.cond.Broadcast()
}

// Next blocks, without busy-waiting, until an event with id > afterID exists
// and returns the earliest such retained event. A cursor older than the
// oldest retained event (including an id that was never issued) resumes from
// the oldest retained event; the discarded gap is not replayable and no error
// is reported. Next returns ctx.Err() once ctx is cancelled.
func (b *Bus) Next(ctx context.Context, afterID uint64) (Event, error) {
	// The condition variable cannot observe ctx on its own; a watcher
	// goroutine broadcasts on cancellation so waiters re-check.
	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()
	})
	defer stop()

	b.mu.Lock()
	defer b.mu.Unlock()

	// A cursor that was never issued is treated the same as one before the
	// oldest retained event.
	if afterID > b.counter {
		afterID = 0
	}

	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		if len(b.buf) > 0 && b.counter > afterID {
			// The newest event always qualifies, so this scan cannot miss.
			for _, ev := range b.buf {
				if ev.ID > afterID {
					return ev, nil
				}
			}
		}
		b.cond.Wait()
	}
}

// Subscribe returns a channel delivering every event with id > afterID in
// strictly increasing id order, including events published after the call.
// The channel closes when ctx is cancelled; the bus keeps no per-subscriber
// state. Slow consumers delay only their own goroutine.
func (b *Bus) Subscribe(ctx context.Context, afterID uint64) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		cursor := afterID
		for {
			ev, err := b.Next(ctx, cursor)
			if err != nil {
				return
			}
			select {
			case ch <- ev:
				cursor = ev.ID
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

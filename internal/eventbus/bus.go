package eventbus

import "sync"

// DefaultCapacity is the bounded buffer size per spec.md §4.9.
const DefaultCapacity = 100

// Subscription is a bounded per-consumer event channel. The consumer reads
// from Events; Lagged reports how many events were dropped since the last
// read because the consumer fell behind.
type Subscription struct {
	Events <-chan Event
	bus    *Bus
	id     uint64
	ch     chan Event

	mu     sync.Mutex
	lagged int
}

// Lagged returns and resets the number of events dropped for this
// subscriber since the last call, satisfying spec.md §4.9's "Lagged(n)"
// signal for slow consumers.
func (s *Subscription) Lagged() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lagged
	s.lagged = 0
	return n
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.unregister(s.id)
}

// Bus is the process-wide broadcast channel. Publish never blocks: a
// subscriber that can't keep up has its oldest buffered event dropped in
// favor of the new one, and its Lagged counter incremented, generalizing
// the teacher's websocket.Hub non-blocking `select{...default: drop}` loop
// from "connected clients" to typed domain events.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	subs     map[uint64]*Subscription
	capacity int
}

// NewBus creates a Bus with the given per-subscriber buffer capacity. A
// capacity of 0 uses DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{subs: make(map[uint64]*Subscription), capacity: capacity}
}

// Subscribe registers a new consumer and returns its Subscription.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Event, b.capacity)
	sub := &Subscription{Events: ch, bus: b, id: b.nextID, ch: ch}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) unregister(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Publish fans an event out to every subscriber without blocking. A
// subscriber whose buffer is full has its oldest event evicted to make
// room, and its lag counter incremented, so a reconnecting slow consumer
// still observes a recent tail instead of starving entirely.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- e:
			default:
			}
			sub.mu.Lock()
			sub.lagged++
			sub.mu.Unlock()
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// PublishLog publishes one log line onto the bus as an Info event, with the
// level, message and fields in its data, alongside the domain events the
// acquisition pipeline publishes directly.
func (b *Bus) PublishLog(level, message string, fields map[string]any) {
	data := map[string]any{"level": level, "message": message}
	for k, v := range fields {
		data[k] = v
	}
	b.Publish(New(Info, data))
}

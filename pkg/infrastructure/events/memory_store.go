package events

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultStreamRetention is the number of events kept per scenario stream
	DefaultStreamRetention = 500
	// DefaultLogRetention is the number of events kept in the global log
	DefaultLogRetention = 5000
)

// InMemoryEventStore keeps a bounded history per stream and delivers events
// to each subscriber asynchronously, one at a time, in append order.
type InMemoryEventStore struct {
	streams     map[string][]Event
	versions    map[string]int
	subscribers []*subscription
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	logger      zerolog.Logger

	streamRetention int
	logRetention    int
}

// StoreOption configures an InMemoryEventStore
type StoreOption func(*InMemoryEventStore)

// WithRetention bounds the per-stream and global history. Values below 1 keep the defaults.
func WithRetention(perStream, total int) StoreOption {
	return func(s *InMemoryEventStore) {
		if perStream > 0 {
			s.streamRetention = perStream
		}
		if total > 0 {
			s.logRetention = total
		}
	}
}

func NewInMemoryEventStore(logger zerolog.Logger, opts ...StoreOption) *InMemoryEventStore {
	s := &InMemoryEventStore{
		streams:         make(map[string][]Event),
		versions:        make(map[string]int),
		allEvents:       make([]Event, 0),
		logger:          logger,
		streamRetention: DefaultStreamRetention,
		logRetention:    DefaultLogRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.versions[streamID]++
	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: s.versions[streamID],
	}

	s.streams[streamID] = trim(append(s.streams[streamID], eventWithVersion), s.streamRetention)
	s.allEvents = trim(append(s.allEvents, eventWithVersion), s.logRetention)
	s.position++

	// enqueued under the lock so every subscriber sees the append order
	for _, sub := range s.subscribers {
		if sub.wants(eventWithVersion.EventType) {
			sub.enqueue(eventWithVersion)
		}
	}

	return nil
}

func trim(events []Event, limit int) []Event {
	if len(events) <= limit {
		return events
	}
	out := make([]Event, limit)
	copy(out, events[len(events)-limit:])
	return out
}

// ReadEvents returns the retained events of streamID with version >= fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []Event{}
	for _, e := range s.streams[streamID] {
		if e.Version() >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAllEvents returns the retained events at global position >= fromPosition.
// Positions count from 0 and keep counting after older events are dropped.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	first := s.position - len(s.allEvents)
	if fromPosition < first {
		fromPosition = first
	}
	if fromPosition >= s.position {
		return []Event{}, nil
	}

	out := make([]Event, s.position-fromPosition)
	copy(out, s.allEvents[fromPosition-first:])
	return out, nil
}

// Position returns the global position the next appended event will take
func (s *InMemoryEventStore) Position() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	sub := newSubscription(eventTypes, handler, s.logger)

	s.mutex.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mutex.Unlock()

	go sub.run()
	return nil
}

// Unsubscribe removes every subscription of handler. Events already queued
// for it are still delivered before its goroutine exits.
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	kept := s.subscribers[:0]
	var removed []*subscription
	for _, sub := range s.subscribers {
		if sub.handler == handler {
			removed = append(removed, sub)
			continue
		}
		kept = append(kept, sub)
	}
	s.subscribers = kept
	s.mutex.Unlock()

	for _, sub := range removed {
		sub.stop()
	}
	return nil
}

// subscription is one handler's ordered, unbounded delivery queue
type subscription struct {
	handler EventHandler
	types   map[string]bool
	logger  zerolog.Logger

	mu     sync.Mutex
	queue  []Event
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newSubscription(eventTypes []string, handler EventHandler, logger zerolog.Logger) *subscription {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &subscription{
		handler: handler,
		types:   types,
		logger:  logger,
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (sub *subscription) wants(eventType string) bool {
	return sub.types[eventType] && sub.handler.CanHandle(eventType)
}

func (sub *subscription) enqueue(event Event) {
	sub.mu.Lock()
	if !sub.closed {
		sub.queue = append(sub.queue, event)
	}
	sub.mu.Unlock()

	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *subscription) stop() {
	sub.mu.Lock()
	sub.closed = true
	sub.mu.Unlock()

	select {
	case sub.signal <- struct{}{}:
	default:
	}
	<-sub.done
}

func (sub *subscription) run() {
	defer close(sub.done)
	for range sub.signal {
		for {
			sub.mu.Lock()
			if len(sub.queue) == 0 {
				closed := sub.closed
				sub.mu.Unlock()
				if closed {
					return
				}
				break
			}
			event := sub.queue[0]
			sub.queue = sub.queue[1:]
			sub.mu.Unlock()

			if err := sub.handler.Handle(event); err != nil {
				sub.logger.Error().Err(err).Str("event_type", event.Type()).Str("event_id", event.ID()).Msg("event handler failed")
			}
		}
	}
}

package adapter

import (
	"fmt"
	"log/slog"
	"sync"
)

type subscription struct {
	id  uint64
	key string
	fn  func(value any)
}

type event struct {
	key  string
	load func() (value any, ok bool)
}

// subscriptions holds the subscribers of an Adapter and delivers change
// events to them.
//
// Events are delivered one at a time, in the order they were dispatched. If an
// event is dispatched while another one is being delivered, e.g. because a
// subscriber changed a value, it's queued and delivered by the same goroutine
// after the current event, instead of recursing. A panicking subscriber is
// logged and skipped.
type subscriptions struct {
	logger *slog.Logger

	mx       sync.Mutex
	nextID   uint64
	subs     []subscription // ordered by id
	queue    []event
	draining bool
	stopped  bool
}

func newSubscriptions(logger *slog.Logger) *subscriptions {
	return &subscriptions{logger: logger}
}

func (s *subscriptions) add(key string, fn func(value any)) uint64 {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.nextID++
	s.subs = append(s.subs, subscription{id: s.nextID, key: key, fn: fn})

	return s.nextID
}

func (s *subscriptions) remove(id uint64) {
	s.mx.Lock()
	defer s.mx.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// len returns the number of active subscriptions.
func (s *subscriptions) len() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return len(s.subs)
}

// stop discards pending events and prevents further deliveries.
func (s *subscriptions) stop() {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.stopped = true
	s.queue = nil
}

// dispatch queues an event for key. load is called right before delivery to
// obtain the value passed to subscribers; if it returns false the event is
// dropped.
func (s *subscriptions) dispatch(key string, load func() (any, bool)) {
	s.mx.Lock()
	if s.stopped {
		s.mx.Unlock()
		return
	}
	s.queue = append(s.queue, event{key: key, load: load})
	if s.draining {
		s.mx.Unlock()
		return
	}
	s.draining = true
	s.mx.Unlock()

	s.drain()
}

func (s *subscriptions) drain() {
	defer func() {
		// If loading a value panics, let a later dispatch pick up the
		// remaining events.
		if r := recover(); r != nil {
			s.mx.Lock()
			s.draining = false
			s.mx.Unlock()
			panic(r)
		}
	}()

	for {
		s.mx.Lock()
		if len(s.queue) == 0 || s.stopped {
			s.draining = false
			s.queue = nil
			s.mx.Unlock()
			return
		}
		evt := s.queue[0]
		s.queue = s.queue[1:]
		s.mx.Unlock()

		value, ok := evt.load()
		if !ok {
			continue
		}

		for _, fn := range s.matching(evt.key) {
			s.deliver(evt.key, fn, value)
		}
	}
}

func (s *subscriptions) deliver(key string, fn func(value any), value any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("subscriber panicked", "key", key, "panic", fmt.Sprint(r))
		}
	}()
	fn(value)
}

// matching returns the callbacks subscribed to key, in subscription order.
func (s *subscriptions) matching(key string) []func(value any) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.stopped {
		return nil
	}

	fns := []func(value any){}
	for _, sub := range s.subs {
		if sub.key == key {
			fns = append(fns, sub.fn)
		}
	}

	return fns
}

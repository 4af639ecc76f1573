package authstate

import (
	"context"
	"sync"
)

// Destination hints where consumers should navigate after a committed
// transition: the authenticated home after a successful sign-in, the sign-in
// screen after any sign-out.
type Destination string

const (
	DestinationNone   Destination = ""
	DestinationHome   Destination = "home"
	DestinationSignIn Destination = "sign_in"
)

// Change is delivered to subscribers on every committed state transition.
type Change struct {
	State    State
	Navigate Destination
}

// Subscription receives state changes until closed.
type Subscription interface {
	// Changes returns the channel state transitions are delivered on.
	// The channel is closed when the subscription or the store closes.
	Changes() <-chan Change

	// Close releases the subscription. Safe to call multiple times.
	Close() error
}

// Store holds the canonical session state and fans committed transitions out
// to subscribers. It performs no I/O; all mutation goes through the
// Controller. Slow subscribers have changes dropped rather than blocking the
// committing writer, so consumers must treat Changes as a wake-up signal and
// read Current for the authoritative snapshot.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[*storeSub]struct{}
	closed bool
}

// NewStore creates a store in the uninitialized state (Loading=true).
func NewStore() *Store {
	return &Store{
		state: State{Loading: true},
		subs:  make(map[*storeSub]struct{}),
	}
}

// Current returns the latest committed snapshot.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a change listener. The subscription is released when
// ctx is cancelled or Close is called, whichever comes first.
func (s *Store) Subscribe(ctx context.Context) Subscription {
	sub := &storeSub{ch: make(chan Change, 8)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = sub.Close()
		return sub
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			s.unsubscribe(sub)
		}()
	}

	return sub
}

// commit replaces the snapshot and notifies subscribers.
func (s *Store) commit(state State, nav Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.state = state
	change := Change{State: state, Navigate: nav}
	for sub := range s.subs {
		if !sub.send(change) {
			// Full buffer or closed subscriber; drop rather than block the writer.
			delete(s.subs, sub)
			_ = sub.Close()
		}
	}
}

// Close shuts the store down and closes all subscriptions. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for sub := range s.subs {
		_ = sub.Close()
	}
	clear(s.subs)
	return nil
}

func (s *Store) unsubscribe(sub *storeSub) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, sub)
	_ = sub.Close()
}

type storeSub struct {
	ch     chan Change
	mu     sync.Mutex
	closed bool
}

func (s *storeSub) Changes() <-chan Change {
	return s.ch
}

func (s *storeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *storeSub) send(c Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- c:
		return true
	default:
		return false
	}
}

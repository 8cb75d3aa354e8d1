package webui

import (
	"slices"
	"sync"

	"github.com/kastheco/atlas/ipc"
)

// UIAction is an input to a screen reducer: a message from the host
// wrapped by FromMessage, or a local action raised by the UI itself.
type UIAction interface {
	uiAction()
}

// Received wraps a host message.
type Received struct {
	Message ipc.Message
}

// MarkLoading flags a request in flight.
type MarkLoading struct{}

// RequestFailed clears the loading flag after a failed request.
type RequestFailed struct{}

func (Received) uiAction()      {}
func (MarkLoading) uiAction()   {}
func (RequestFailed) uiAction() {}

// FromMessage lifts a host message into a reducer input.
func FromMessage(m ipc.Message) UIAction {
	return Received{Message: m}
}

// Reducer folds a into s. Reducers are pure: s is never mutated in place.
type Reducer[S any] func(s S, a UIAction) S

// Dispatcher accepts UI actions.
type Dispatcher interface {
	Dispatch(a UIAction)
}

// Status is the state every screen carries.
type Status struct {
	IsLoading bool
	// IsOffline is true once the host reports lost connectivity.
	IsOffline bool
}

// reduce handles the actions shared by every screen. It reports false for
// anything the screen reducer must handle itself.
func (s Status) reduce(a UIAction) (Status, bool) {
	switch a := a.(type) {
	case MarkLoading:
		s.IsLoading = true
		return s, true
	case RequestFailed:
		s.IsLoading = false
		return s, true
	case Received:
		switch m := a.Message.(type) {
		case ipc.OnlineStatus:
			s.IsOffline = !m.IsOnline
			return s, true
		}
	}
	return s, false
}

// Store holds one screen's state and applies its reducer.
type Store[S any] struct {
	mu       sync.Mutex
	state    S
	reduce   Reducer[S]
	watchers []func(S)
}

func NewStore[S any](initial S, reduce Reducer[S]) *Store[S] {
	return &Store[S]{state: initial, reduce: reduce}
}

func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch calls fn with every new state.
func (s *Store[S]) Watch(fn func(S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store[S]) Dispatch(a UIAction) {
	s.mu.Lock()
	s.state = s.reduce(s.state, a)
	state := s.state
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(state)
	}
}

func (s *Store[S]) HandleMessage(m ipc.Message) {
	s.Dispatch(FromMessage(m))
}

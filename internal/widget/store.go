package widget

import (
	"sync"

	"github.com/passgen/passgen-go/internal/model"
)

// Observer is called after every state mutation with the change kind and a
// snapshot of the resulting state. Observers run on the mutating goroutine,
// one update at a time in mutation order, and must not block. They must not
// call back into Update or into any Widget method that mutates state
// (SetLength, ToggleOption, Generate, Copy, Close): those locks are held
// during delivery and the call deadlocks.
type Observer func(change model.Change, state model.PasswordState)

// Store holds the widget state and fans mutations out to observers.
type Store struct {
	// deliver serializes Update so observers see changes in the order they
	// were applied. It is taken before mu.
	deliver   sync.Mutex
	mu        sync.Mutex
	state     model.PasswordState
	observers map[uint64]Observer
	nextID    uint64
}

// NewStore creates a store seeded with initial.
func NewStore(initial model.PasswordState) *Store {
	return &Store{
		state:     initial,
		observers: make(map[uint64]Observer),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() model.PasswordState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Update applies mutate to the state. mutate returns the changes it made, in
// order; each one is delivered to every observer. No changes means no
// notifications.
func (s *Store) Update(mutate func(state *model.PasswordState) []model.Change) model.PasswordState {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	changes := mutate(&s.state)
	state := s.state
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, change := range changes {
		for _, fn := range observers {
			fn(change, state)
		}
	}
	return state
}

// Reset drops every observer.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.observers)
}

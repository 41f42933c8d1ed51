package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Name is the constraint for state and event types.
type Name interface {
	~string
}

// Guard evaluates whether a transition should be allowed.
type Guard[S, E Name] func(ctx context.Context, from S, event E, data any) bool

// Action executes side effects during a transition. Returning an error prevents the transition.
type Action[S, E Name] func(ctx context.Context, from, to S, event E, data any) error

// Listener observes completed transitions.
type Listener[S, E Name] func(ctx context.Context, from, to S, event E)

type transition[S, E Name] struct {
	to      S
	guards  []Guard[S, E]
	actions []Action[S, E]
}

// Machine is a concurrency-safe FSM over string-backed state and event types.
// Transitions are stored as map[from][event][]transition; the first candidate
// whose guards all pass wins.
type Machine[S, E Name] struct {
	initial     S
	current     S
	transitions map[S]map[E][]transition[S, E]
	listeners   []Listener[S, E]
	mu          sync.RWMutex
}

// New creates a machine in the given initial state.
func New[S, E Name](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidState
	}

	m := &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on misconfiguration.
func MustNew[S, E Name](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in any of the given states.
func (m *Machine[S, E]) Is(states ...S) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range states {
		if m.current == s {
			return true
		}
	}
	return false
}

// AddTransition declares a transition after construction.
func (m *Machine[S, E]) AddTransition(from, to S, event E, guards []Guard[S, E], actions []Action[S, E]) error {
	if from == "" || to == "" || event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[E][]transition[S, E])
	}
	m.transitions[from][event] = append(m.transitions[from][event], transition[S, E]{
		to:      to,
		guards:  guards,
		actions: actions,
	})
	return nil
}

// Fire triggers the event. Listeners run after the state has changed.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	if event == "" {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	from := m.current
	t, err := m.lookup(ctx, event, data)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	for _, action := range t.actions {
		if err := action(ctx, from, t.to, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.to
	listeners := m.listeners
	m.mu.Unlock()

	for _, l := range listeners {
		l(ctx, from, t.to, event)
	}
	return nil
}

// CanFire reports whether Fire would find a transition whose guards pass.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	if event == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.lookup(ctx, event, data)
	return err == nil
}

// Reset returns the machine to its initial state without running actions or listeners.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// lookup must be called with m.mu held.
func (m *Machine[S, E]) lookup(ctx context.Context, event E, data any) (transition[S, E], error) {
	candidates := m.transitions[m.current][event]
	if len(candidates) == 0 {
		return transition[S, E]{}, &ErrNoTransitionAvailable{
			StateName: string(m.current),
			EventName: string(event),
		}
	}

	for _, t := range candidates {
		if guardsPass(ctx, t.guards, m.current, event, data) {
			return t, nil
		}
	}

	return transition[S, E]{}, &ErrTransitionRejected{
		StateName: string(m.current),
		EventName: string(event),
	}
}

func guardsPass[S, E Name](ctx context.Context, guards []Guard[S, E], from S, event E, data any) bool {
	for _, g := range guards {
		if g != nil && !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}

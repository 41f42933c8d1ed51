package scan

import (
	"context"

	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/logger"
	"github.com/dmitrymomot/scanstation/pkg/statemachine"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateError        State = "error"
)

func (s State) String() string { return string(s) }

type event string

const (
	eventStart    event = "start"
	eventAcquired event = "acquired"
	eventFail     event = "fail"
	eventStop     event = "stop"
)

// newLifecycle builds the session state machine. Actions run inside Fire,
// which is always called with s.mu held.
func (s *Session) newLifecycle() *statemachine.Machine[State, event] {
	return statemachine.MustNew(StateIdle,
		statemachine.WithTransition(StateIdle, StateInitializing, eventStart,
			statemachine.WithAction(s.beginEpoch)),
		statemachine.WithTransition(StateInitializing, StateReady, eventAcquired,
			statemachine.WithGuard(hasStream),
			statemachine.WithAction(s.recordCamera)),
		statemachine.WithTransitionsFrom([]State{StateInitializing, StateReady}, StateError, eventFail,
			statemachine.WithGuard(hasCause),
			statemachine.WithAction(s.recordFailure)),
		statemachine.WithTransitionsFrom([]State{StateInitializing, StateReady, StateError}, StateIdle, eventStop),
		statemachine.OnTransition[State, event](func(ctx context.Context, from, to State, ev event) {
			s.logger.DebugContext(ctx, "scan session transition",
				logger.Transition(string(from), string(to)),
				logger.Event(string(ev)))
		}),
	)
}

// hasStream accepts acquisitions that carry the opened camera.
func hasStream(_ context.Context, _ State, _ event, data any) bool {
	stream, ok := data.(camera.Stream)
	return ok && stream != nil
}

// hasCause accepts failures that carry the error to show.
func hasCause(_ context.Context, _ State, _ event, data any) bool {
	err, ok := data.(error)
	return ok && err != nil
}

// beginEpoch clears everything the previous run left behind.
func (s *Session) beginEpoch(context.Context, State, State, event, any) error {
	s.epoch++
	s.result = Result{}
	s.errMsg = ""
	s.camera = ""
	s.stats = Stats{}
	return nil
}

func (s *Session) recordCamera(_ context.Context, _, _ State, _ event, data any) error {
	s.camera = data.(camera.Stream).Info().String()
	return nil
}

func (s *Session) recordFailure(_ context.Context, _, _ State, _ event, data any) error {
	s.errMsg = Message(data.(error))
	return nil
}

// Package statemachine provides a small, type-safe finite-state machine for
// lifecycle tracking.
//
// States and events are any string-backed types, so callers declare their
// own enums and get compile-time checks on every transition:
//
//	type phase string
//	type trigger string
//
//	const (
//	    Idle    phase   = "idle"
//	    Running phase   = "running"
//	    Begin   trigger = "begin"
//	)
//
//	m := statemachine.MustNew(Idle,
//	    statemachine.WithTransition(Idle, Running, Begin),
//	)
//	_ = m.Fire(ctx, Begin, nil)
//
// # Guards and Actions
//
// Guards veto a transition based on runtime data. Actions run after all
// guards pass and before the state changes; an action error aborts the
// transition and leaves the current state untouched.
//
// Listeners registered with OnTransition run after the state has changed,
// outside of the machine lock, so they may read the machine again.
//
// # Error Handling
//
//	if statemachine.IsNoTransitionAvailableError(err) { /* event not valid here */ }
//	if statemachine.IsTransitionRejectedError(err)   { /* guard said no */ }
//
// # Concurrency
//
// Machine is safe for concurrent use. Fire serializes transitions; Current,
// Is and CanFire take a read lock.
package statemachine

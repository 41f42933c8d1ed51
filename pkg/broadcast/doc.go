// Package broadcast fans typed messages out to many subscribers.
//
// The in-memory implementation never blocks the publisher. Two options tune
// it for state streams, where only the newest value matters:
//
//   - WithReplayLatest delivers the most recent message to every new
//     subscriber, so a late joiner renders current state immediately.
//   - WithConflation replaces the oldest buffered message when a subscriber
//     falls behind instead of dropping the subscriber.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[Status](4, broadcast.WithReplayLatest(), broadcast.WithConflation())
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[Status]{Data: st})
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscribers are cleaned up when their context is cancelled, when they are
// closed, or when the broadcaster is closed. Without conflation a subscriber
// whose buffer is full is dropped.
package broadcast

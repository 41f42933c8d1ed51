package broadcast_test

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/scanstation/pkg/broadcast"
)

func ExampleWithReplayLatest() {
	b := broadcast.NewMemoryBroadcaster[string](4, broadcast.WithReplayLatest())
	defer b.Close()

	ctx := context.Background()
	_ = b.Broadcast(ctx, broadcast.Message[string]{Data: "ready"})

	// A subscriber that joins late still sees the current value.
	sub := b.Subscribe(ctx)
	msg := <-sub.Receive(ctx)
	fmt.Println(msg.Data)
	// Output: ready
}

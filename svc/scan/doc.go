// Package scan implements the scan session: it acquires a camera through a
// camera.Provider, runs a decoder loop over the stream, keeps the latest
// decoded payload and releases the camera on teardown.
//
// A Session moves through four states:
//
//	idle ──Start──▶ initializing ──▶ ready
//	                     │             │
//	                     └────▶ error ◀┘
//
// Stop returns any state to idle. The error state is left only through Stop
// or Restart; there is no automatic retry.
//
// Display surfaces read the session through Snapshot or Subscribe. Each
// state change and each accepted result is published as a Snapshot; decode
// misses are only counted in Stats.
package scan

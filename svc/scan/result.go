package scan

import (
	"time"

	"github.com/dmitrymomot/scanstation/pkg/decoder"
)

// Result is a decoded payload. Text is opaque and never interpreted.
type Result struct {
	Text   string
	Format decoder.Format
	Epoch  uint64
	At     time.Time
}

// Empty reports whether no payload has been decoded.
func (r Result) Empty() bool { return r.Text == "" }

// Stats counts decode attempts for diagnostics.
type Stats struct {
	Frames  uint64
	Misses  uint64
	Results uint64
}

// Snapshot is the view of a session handed to display surfaces.
type Snapshot struct {
	SessionID string
	State     State
	Error     string
	Result    Result
	Camera    string
	Epoch     uint64
	Stats     Stats
}

// Loading reports whether the camera is being acquired.
func (s Snapshot) Loading() bool { return s.State == StateInitializing }

// Failed reports whether the error banner should be shown.
func (s Snapshot) Failed() bool { return s.State == StateError }

// ShowResult reports whether the scanned data panel should be shown.
func (s Snapshot) ShowResult() bool {
	return s.State != StateError && !s.Result.Empty()
}

package decoder

import "errors"

var (
	// ErrNoFormats is returned when no symbol format is enabled.
	ErrNoFormats = errors.New("no symbol formats configured")
	// ErrUnknownFormat is returned for format names the decoder cannot read.
	ErrUnknownFormat = errors.New("unknown symbol format")
	// ErrInvalidRegion is returned for a region of interest outside the frame.
	ErrInvalidRegion = errors.New("invalid region of interest")
	// ErrInvalidRate is returned when attempts per second is not positive.
	ErrInvalidRate = errors.New("attempts per second must be positive")
	// ErrRunning is returned by Start while a loop is already running.
	ErrRunning = errors.New("decoder loop already running")
)

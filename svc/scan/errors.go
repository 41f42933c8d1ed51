package scan

import "errors"

var (
	// ErrStopped is returned by Start when Stop interrupted the acquisition.
	ErrStopped = errors.New("scan session stopped")
	// ErrNilProvider is returned by New without a camera provider.
	ErrNilProvider = errors.New("camera provider is required")
	// ErrNilDecoder is returned by New without a decoder.
	ErrNilDecoder = errors.New("decoder is required")
)

// DefaultErrorMessage is shown when an error carries no text of its own.
const DefaultErrorMessage = "Error accessing camera"

// Message returns the human readable text for a session error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

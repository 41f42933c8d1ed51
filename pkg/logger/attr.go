package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for err under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// SessionID records the scan session identifier under the key "session_id".
// If id is nil, it returns an empty Attr.
func SessionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("session_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Camera records a camera name or device path under the key "camera".
func Camera(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("camera", name)
}

// State records a lifecycle state under the key "state".
func State(s string) slog.Attr {
	return slog.String("state", s)
}

// Transition groups the from/to states of a lifecycle change.
func Transition(from, to string) slog.Attr {
	return slog.Group("transition", slog.String("from", from), slog.String("to", to))
}

// SymbolFormat records a decoded symbol format under the key "format".
func SymbolFormat(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("format", name)
}

// PayloadSize records the length of a decoded payload. Payload text itself is never logged.
func PayloadSize(n int) slog.Attr {
	return slog.Int("payload_bytes", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

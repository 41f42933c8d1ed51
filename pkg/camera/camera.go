package camera

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Facing is the direction a camera points relative to the user.
type Facing string

const (
	// FacingEnvironment is the rear camera.
	FacingEnvironment Facing = "environment"
	// FacingUser is the front (selfie) camera.
	FacingUser Facing = "user"
	// FacingAny expresses no preference.
	FacingAny Facing = ""
)

// UnmarshalText accepts "environment"/"rear"/"back", "user"/"front" and "any"/"".
func (f *Facing) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "environment", "rear", "back":
		*f = FacingEnvironment
	case "user", "front":
		*f = FacingUser
	case "", "any":
		*f = FacingAny
	default:
		return fmt.Errorf("%w: facing %q", ErrUnsupported, string(text))
	}
	return nil
}

func (f Facing) String() string {
	if f == FacingAny {
		return "any"
	}
	return string(f)
}

// Request describes the stream a caller wants.
type Request struct {
	Facing Facing
	Width  int
	Height int
}

// Device is a camera that can be opened.
type Device struct {
	Name   string
	Path   string
	Facing Facing
}

// Info describes an open stream.
type Info struct {
	Device Device
	Format string
	Width  int
	Height int
}

func (i Info) String() string {
	if i.Width == 0 || i.Height == 0 {
		return i.Device.Name
	}
	return fmt.Sprintf("%s %dx%d %s", i.Device.Name, i.Width, i.Height, i.Format)
}

// Stream is an open camera handle.
type Stream interface {
	Info() Info
	// ReadFrame blocks until the next frame is available or ctx is done.
	ReadFrame(ctx context.Context) (image.Image, error)
	// Close releases the device. Calls after the first return nil.
	Close() error
}

// Provider acquires camera streams.
type Provider interface {
	Open(ctx context.Context, req Request) (Stream, error)
	Devices(ctx context.Context) ([]Device, error)
}

// Order returns devices with those matching facing first, keeping the
// original order inside each group. Devices with unknown facing come after
// matches and before cameras facing the other way.
func Order(devices []Device, facing Facing) []Device {
	if facing == FacingAny {
		return append([]Device(nil), devices...)
	}

	ordered := make([]Device, 0, len(devices))
	var unknown, other []Device
	for _, d := range devices {
		switch d.Facing {
		case facing:
			ordered = append(ordered, d)
		case FacingAny:
			unknown = append(unknown, d)
		default:
			other = append(other, d)
		}
	}
	ordered = append(ordered, unknown...)
	return append(ordered, other...)
}

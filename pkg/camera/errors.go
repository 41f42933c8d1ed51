package camera

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrPermissionDenied is returned when the process may not open the camera.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoCamera is returned when no usable camera exists.
	ErrNoCamera = errors.New("no camera available")
	// ErrUnsupported is returned when a camera or the requested configuration cannot be used.
	ErrUnsupported = errors.New("unsupported camera configuration")
	// ErrStreamClosed is returned when reading from a released stream.
	ErrStreamClosed = errors.New("camera stream closed")
	// ErrBadFrame is returned for a single frame that cannot be converted.
	// The stream itself stays usable.
	ErrBadFrame = errors.New("bad camera frame")
)

// DeviceError is a classified failure of one camera. It matches both its
// Kind and the underlying error with errors.Is.
type DeviceError struct {
	Path string
	Kind error
	Err  error
}

// Error reports the kind and the device, leaving the raw cause to Unwrap so
// the message stays readable.
func (e *DeviceError) Error() string {
	if e.Path == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Path)
}

func (e *DeviceError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Classify maps low-level open errors onto the package taxonomy.
// Errors that already belong to it, and unknown errors, are returned unchanged.
func Classify(err error) error {
	var kind error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrNoCamera), errors.Is(err, ErrUnsupported):
		return err
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		kind = ErrNoCamera
	case errors.Is(err, syscall.EINVAL), errors.Is(err, syscall.ENOTTY):
		kind = ErrUnsupported
	default:
		return err
	}

	de := &DeviceError{Kind: kind, Err: err}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		de.Path = pe.Path
	}
	return de
}

// onDevice attaches the device path to err.
func onDevice(path string, err error) error {
	var de *DeviceError
	if errors.As(err, &de) {
		if de.Path == "" {
			cp := *de
			cp.Path = path
			return &cp
		}
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}

// pickError chooses which of several per-device failures to report:
// permission problems first, then unsupported devices, then the first error.
func pickError(errs []error) error {
	if len(errs) == 0 {
		return ErrNoCamera
	}
	for _, target := range []error{ErrPermissionDenied, ErrUnsupported} {
		for _, err := range errs {
			if errors.Is(err, target) {
				return err
			}
		}
	}
	return errs[0]
}

// Package camera is the capability provider for the scan station: it finds
// cameras, opens a frame stream honouring a facing preference, and releases
// it again.
//
// A Provider opens Streams. A Stream hands out decoded frames and owns the
// device until Close is called; Close is the one and only release call.
//
// Two providers ship with the package:
//
//   - V4L2 drives Linux video devices through github.com/blackjack/webcam,
//     preferring MJPEG and falling back to YUYV or GREY frames.
//   - Still replays fixed images (files, a directory, or a generated QR test
//     card) for kiosks without hardware and for tests.
//
// Facing preference works like a browser's facingMode: the preferred facing
// is tried first, then every other camera, so a station with a single camera
// still starts.
//
// Acquisition failures are classified into ErrPermissionDenied, ErrNoCamera
// and ErrUnsupported; anything else is returned as is.
package camera

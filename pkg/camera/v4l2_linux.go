//go:build linux

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/blackjack/webcam"
)

// V4L2 opens Linux video devices.
type V4L2 struct {
	opts V4L2Options
}

// NewV4L2 creates a V4L2 provider.
func NewV4L2(opts V4L2Options) *V4L2 {
	return &V4L2{opts: opts.withDefaults()}
}

func (p *V4L2) Devices(context.Context) ([]Device, error) {
	return p.opts.discover()
}

// Open tries the preferred facing first, then every other device.
func (p *V4L2) Open(ctx context.Context, req Request) (Stream, error) {
	devices, err := p.opts.discover()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoCamera
	}

	var errs []error
	for _, d := range Order(devices, req.Facing) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := p.open(d, req)
		if err == nil {
			return s, nil
		}
		errs = append(errs, onDevice(d.Path, Classify(err)))
	}
	return nil, pickError(errs)
}

func (p *V4L2) open(d Device, req Request) (*v4l2Stream, error) {
	cam, err := webcam.Open(d.Path)
	if err != nil {
		return nil, err
	}

	code, width, height, err := negotiate(cam, req)
	if err != nil {
		cam.Close()
		return nil, err
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, err
	}

	return &v4l2Stream{
		cam:     cam,
		timeout: uint32(max(p.opts.FrameTimeout.Seconds(), 1)),
		info: Info{
			Device: d,
			Format: FourCCName(code),
			Width:  width,
			Height: height,
		},
		code: code,
	}, nil
}

func negotiate(cam *webcam.Webcam, req Request) (uint32, int, int, error) {
	supported := cam.GetSupportedFormats()
	for _, code := range preferredFourCCs {
		if _, ok := supported[webcam.PixelFormat(code)]; !ok {
			continue
		}
		w, h := closestSize(cam.GetSupportedFrameSizes(webcam.PixelFormat(code)), req)
		got, gw, gh, err := cam.SetImageFormat(webcam.PixelFormat(code), uint32(w), uint32(h))
		if err != nil {
			return 0, 0, 0, err
		}
		return uint32(got), int(gw), int(gh), nil
	}
	return 0, 0, 0, fmt.Errorf("%w: no MJPEG, YUYV or GREY output", ErrUnsupported)
}

// closestSize picks the discrete size nearest to the requested area, or the
// request itself when the device reports stepwise sizes only.
func closestSize(sizes []webcam.FrameSize, req Request) (int, int) {
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = 1280, 720
	}
	best, bestDiff := -1, 0
	for i, s := range sizes {
		if s.StepWidth != 0 || s.StepHeight != 0 {
			continue
		}
		diff := int(s.MaxWidth)*int(s.MaxHeight) - w*h
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return w, h
	}
	return int(sizes[best].MaxWidth), int(sizes[best].MaxHeight)
}

type v4l2Stream struct {
	mu      sync.Mutex
	cam     *webcam.Webcam
	closed  bool
	timeout uint32
	info    Info
	code    uint32
}

func (s *v4l2Stream) Info() Info { return s.info }

func (s *v4l2Stream) ReadFrame(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrStreamClosed
		}
		err := s.cam.WaitForFrame(s.timeout)
		var timeout *webcam.Timeout
		if errors.As(err, &timeout) {
			s.mu.Unlock()
			continue
		}
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		data, err := s.cam.ReadFrame()
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if len(data) == 0 {
			s.mu.Unlock()
			continue
		}
		img, err := DecodeFrame(s.code, data, s.info.Width, s.info.Height)
		s.mu.Unlock()
		return img, err
	}
}

func (s *v4l2Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	stopErr := s.cam.StopStreaming()
	return errors.Join(stopErr, s.cam.Close())
}

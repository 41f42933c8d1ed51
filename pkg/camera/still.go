package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/scanstation/pkg/qrcode"
)

// Still serves pre-recorded images as a camera. It backs demos, the decode
// command and tests where no video device exists.
type Still struct {
	frames []image.Image
	device Device
}

// StillOption configures a Still provider.
type StillOption func(*Still)

// WithStillFacing sets the facing reported by the still device.
func WithStillFacing(f Facing) StillOption {
	return func(s *Still) { s.device.Facing = f }
}

// NewStill creates a provider that cycles over frames.
func NewStill(frames []image.Image, opts ...StillOption) *Still {
	s := &Still{
		frames: frames,
		device: Device{Name: "still", Path: "still:", Facing: FacingEnvironment},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStillFromPath loads a single image or every image in a directory.
func NewStillFromPath(path string, opts ...StillOption) (*Still, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, Classify(err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, Classify(err)
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() && isImageFile(e.Name()) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		slices.Sort(files)
	}

	frames := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := loadImage(f)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrNoCamera, path)
	}

	s := NewStill(frames, opts...)
	s.device.Name = filepath.Base(path)
	s.device.Path = path
	return s, nil
}

// NewStillFromPayload renders payload as a QR code preceded by blank frames.
func NewStillFromPayload(payload string, blanks int, opts ...StillOption) (*Still, error) {
	card, err := qrcode.Image(payload, 320)
	if err != nil {
		return nil, err
	}
	frames := make([]image.Image, 0, blanks+1)
	for range blanks {
		frames = append(frames, image.NewGray(card.Bounds()))
	}
	frames = append(frames, card)
	return NewStill(frames, opts...), nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Classify(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupported, path, err)
	}
	return img, nil
}

func (s *Still) Devices(context.Context) ([]Device, error) {
	if len(s.frames) == 0 {
		return nil, nil
	}
	return []Device{s.device}, nil
}

func (s *Still) Open(ctx context.Context, req Request) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.frames) == 0 {
		return nil, ErrNoCamera
	}
	b := s.frames[0].Bounds()
	return &stillStream{
		frames: s.frames,
		info: Info{
			Device: s.device,
			Format: "still",
			Width:  b.Dx(),
			Height: b.Dy(),
		},
	}, nil
}

type stillStream struct {
	mu     sync.Mutex
	frames []image.Image
	next   int
	closed bool
	info   Info
}

func (s *stillStream) Info() Info { return s.info }

// ReadFrame returns frames in order and repeats the last one once exhausted.
func (s *stillStream) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	img := s.frames[s.next]
	if s.next < len(s.frames)-1 {
		s.next++
	}
	return img, nil
}

func (s *stillStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

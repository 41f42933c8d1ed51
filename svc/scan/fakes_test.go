package scan_test

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/decoder"
)

type fakeStream struct {
	p    *fakeProvider
	info camera.Info
}

func (s *fakeStream) Info() camera.Info { return s.info }

func (s *fakeStream) ReadFrame(ctx context.Context) (image.Image, error) {
	return nil, errors.New("fake stream has no frames")
}

// Close counts every call so tests can detect double releases.
func (s *fakeStream) Close() error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.closes++
	s.p.open--
	return s.p.closeErr
}

type fakeProvider struct {
	mu       sync.Mutex
	err      error
	closeErr error
	// gate blocks Open until closed. Open then succeeds even if ctx was
	// cancelled, like a device that resolves late.
	gate    chan struct{}
	opening chan struct{}

	opens   int
	closes  int
	open    int
	maxOpen int
	facing  []camera.Facing
}

func (p *fakeProvider) Devices(context.Context) ([]camera.Device, error) {
	return []camera.Device{{Name: "fake", Facing: camera.FacingEnvironment}}, nil
}

func (p *fakeProvider) Open(ctx context.Context, req camera.Request) (camera.Stream, error) {
	p.mu.Lock()
	gate, opening := p.gate, p.opening
	p.facing = append(p.facing, req.Facing)
	p.mu.Unlock()

	if opening != nil {
		close(opening)
	}
	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.opens++
	p.open++
	p.maxOpen = max(p.maxOpen, p.open)
	return &fakeStream{p: p, info: camera.Info{
		Device: camera.Device{Name: "fake"},
		Format: "MJPG",
		Width:  640,
		Height: 480,
	}}, nil
}

func (p *fakeProvider) counts() (opens, closes, open, maxOpen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens, p.closes, p.open, p.maxOpen
}

// fakeDecoder lets tests drive the session callbacks directly.
type fakeDecoder struct {
	mu       sync.Mutex
	handlers decoder.Handlers
	running  bool
	starts   int
	stops    int
	overlaps int
	startErr error
}

func (d *fakeDecoder) Start(_ context.Context, _ camera.Stream, h decoder.Handlers) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	if d.running {
		d.overlaps++
	}
	d.running = true
	d.starts++
	d.handlers = h
	return nil
}

func (d *fakeDecoder) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		d.stops++
	}
	d.running = false
}

func (d *fakeDecoder) current() decoder.Handlers {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handlers
}

func (d *fakeDecoder) result(text string) {
	d.current().OnResult(decoder.Symbol{Text: text, Format: decoder.FormatQRCode})
}

func (d *fakeDecoder) miss() { d.current().OnMiss() }

func (d *fakeDecoder) fail(err error) { d.current().OnFailure(err) }

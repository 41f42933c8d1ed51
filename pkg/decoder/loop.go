package decoder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/logger"
)

// Handlers receive decode outcomes. All callbacks run on the loop goroutine,
// one at a time. Nil callbacks are skipped.
type Handlers struct {
	// OnResult is called for every frame with a readable symbol.
	OnResult func(Symbol)
	// OnMiss is called for every frame without one, including frames the
	// camera delivered corrupt.
	OnMiss func()
	// OnFailure is called once when frames can no longer be read. The loop
	// exits after it returns.
	OnFailure func(error)
}

// Decoder runs a decode loop over a camera stream.
type Decoder interface {
	Start(ctx context.Context, stream camera.Stream, h Handlers) error
	// Stop halts the loop and waits for it to exit. It must not be called
	// from inside a handler.
	Stop()
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for loop lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// Loop decodes frames at a fixed rate.
type Loop struct {
	reader   *Reader
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Decoder = (*Loop)(nil)

// New creates a Loop from cfg.
func New(cfg Config, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reader, err := NewReader(cfg.Formats, cfg.Region, cfg.TryHarder)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		reader:   reader,
		interval: cfg.Interval(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Start begins decoding frames from stream in the background.
func (l *Loop) Start(ctx context.Context, stream camera.Stream, h Handlers) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done

	l.logger.DebugContext(ctx, "decoder loop started",
		logger.Component("decoder"),
		logger.Camera(stream.Info().String()),
		logger.Duration(l.interval))

	go l.run(ctx, stream, h, done)
	return nil
}

// Stop cancels the running loop and waits for it to exit. Safe to call when
// the loop is not running.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, stream camera.Stream, h Handlers, done chan struct{}) {
	defer close(done)
	defer l.logger.Debug("decoder loop stopped", logger.Component("decoder"))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if !l.attempt(ctx, stream, h) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// attempt reads and decodes one frame. It returns false when the loop must end.
func (l *Loop) attempt(ctx context.Context, stream camera.Stream, h Handlers) bool {
	img, err := stream.ReadFrame(ctx)
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, camera.ErrBadFrame) {
		if h.OnMiss != nil {
			h.OnMiss()
		}
		return true
	}
	if err != nil {
		if h.OnFailure != nil {
			h.OnFailure(err)
		}
		return false
	}

	sym, ok := l.reader.Decode(img)
	if ctx.Err() != nil {
		return false
	}
	switch {
	case ok && h.OnResult != nil:
		h.OnResult(sym)
	case !ok && h.OnMiss != nil:
		h.OnMiss()
	}
	return true
}

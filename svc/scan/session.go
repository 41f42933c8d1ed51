package scan

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scanstation/pkg/broadcast"
	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/decoder"
	"github.com/dmitrymomot/scanstation/pkg/logger"
	"github.com/dmitrymomot/scanstation/pkg/statemachine"
)

// Session owns one camera and one decoder loop. All methods are safe for
// concurrent use.
type Session struct {
	id         string
	provider   camera.Provider
	decoder    decoder.Decoder
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
	bufferSize int
	hub        *broadcast.MemoryBroadcaster[Snapshot]

	mu        sync.Mutex
	fsm       *statemachine.Machine[State, event]
	gen       uint64
	epoch     uint64
	cancel    context.CancelFunc
	acquiring bool
	lease     *lease
	stream    camera.Stream
	looping   bool
	result    Result
	errMsg    string
	camera    string
	stats     Stats
}

// New creates an idle session.
func New(provider camera.Provider, dec decoder.Decoder, cfg Config, opts ...Option) (*Session, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if dec == nil {
		return nil, ErrNilDecoder
	}

	s := &Session{
		id:         uuid.NewString(),
		provider:   provider,
		decoder:    dec,
		cfg:        cfg,
		logger:     slog.Default(),
		now:        time.Now,
		bufferSize: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("scan"), logger.SessionID(s.id))
	s.fsm = s.newLifecycle()
	s.hub = broadcast.NewMemoryBroadcaster[Snapshot](s.bufferSize,
		broadcast.WithReplayLatest(),
		broadcast.WithConflation(),
	)
	s.publishLocked(context.Background())
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start acquires the camera and starts decoding. It is a no-op unless the
// session is idle. Acquisition failures move the session to the error state
// and are returned; they are not retried.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if !s.fsm.Is(StateIdle) {
		s.mu.Unlock()
		return nil
	}
	if err := s.fsm.Fire(ctx, eventStart, nil); err != nil {
		s.mu.Unlock()
		return err
	}

	s.gen++
	gen := s.gen

	actx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.acquiring = true
	prev, cur := s.lease, newLease()
	s.lease = cur
	s.publishLocked(ctx)
	s.mu.Unlock()
	defer cancel()

	s.logger.InfoContext(ctx, "starting scan session", slog.String("facing", s.cfg.Facing.String()))

	// The previous camera must be closed before another is requested.
	if err := prev.wait(actx); err != nil {
		go cur.settle(func() { _ = prev.wait(context.Background()) })
		if s.fail(ctx, gen, err) {
			return err
		}
		return ErrStopped
	}

	stream, err := s.provider.Open(actx, s.cfg.request())
	if err != nil {
		err = camera.Classify(err)
		stopped := !s.fail(ctx, gen, err)
		cur.settle(nil)
		if stopped {
			return ErrStopped
		}
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		// Stop ran while the camera was being opened.
		cur.settle(s.teardown(ctx, stream, false))
		return ErrStopped
	}

	handlers := decoder.Handlers{
		OnResult:  func(sym decoder.Symbol) { s.accept(gen, sym.Text, sym.Format) },
		OnMiss:    func() { s.miss(gen) },
		OnFailure: func(err error) { s.lost(gen, err) },
	}
	// The loop outlives the Start call, so it is not bound to ctx.
	if err := s.decoder.Start(context.WithoutCancel(ctx), stream, handlers); err != nil {
		s.mu.Unlock()
		s.fail(ctx, gen, err)
		cur.settle(s.teardown(ctx, stream, false))
		return err
	}
	s.acquiring = false
	s.cancel = nil
	s.stream = stream
	s.looping = true
	if err := s.fsm.Fire(ctx, eventAcquired, stream); err != nil {
		s.mu.Unlock()
		return err
	}
	cam := s.camera
	s.publishLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scan session ready", logger.Camera(cam))
	return nil
}

// Stop halts decoding and releases the camera. It is safe to call at any
// time and any number of times; the camera is closed exactly once.
func (s *Session) Stop() error {
	ctx := context.Background()

	s.mu.Lock()
	if s.fsm.Is(StateIdle) {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	acquiring := s.acquiring
	s.acquiring = false
	stream, looping, l := s.stream, s.looping, s.lease
	s.stream, s.looping = nil, false
	if err := s.fsm.Fire(ctx, eventStop, nil); err != nil {
		s.mu.Unlock()
		return err
	}
	s.publishLocked(ctx)
	s.mu.Unlock()

	// An acquisition still in flight settles its own lease.
	if !acquiring && l != nil {
		l.settle(s.teardown(ctx, stream, looping))
	}
	s.logger.InfoContext(ctx, "scan session stopped")
	return nil
}

// Restart stops the session and starts a new result epoch.
func (s *Session) Restart(ctx context.Context) error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start(ctx)
}

// OnDecoded records a decoded payload. Empty or whitespace-only text is a
// non-detection. Ignored while idle or in the error state.
func (s *Session) OnDecoded(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptLocked(text, "")
}

// OnDecodeMiss counts a frame without a symbol.
func (s *Session) OnDecodeMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Frames++
	s.stats.Misses++
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.Current()
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Stats returns decode counters for the current epoch.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Subscribe delivers the current snapshot followed by every later change
// until ctx is done. Slow subscribers only see the most recent snapshots.
func (s *Session) Subscribe(ctx context.Context) broadcast.Subscriber[Snapshot] {
	return s.hub.Subscribe(ctx)
}

// Viewers returns the number of live subscriptions.
func (s *Session) Viewers() int {
	return s.hub.Len()
}

// Close stops the session and closes all subscriptions.
func (s *Session) Close() error {
	return errors.Join(s.Stop(), s.hub.Close())
}

func (s *Session) accept(gen uint64, text string, format decoder.Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.acceptLocked(text, format)
}

func (s *Session) acceptLocked(text string, format decoder.Format) {
	if s.fsm.Is(StateIdle, StateError) {
		return
	}
	s.stats.Frames++
	if strings.TrimSpace(text) == "" {
		s.stats.Misses++
		return
	}
	s.stats.Results++
	s.result = Result{Text: text, Format: format, Epoch: s.epoch, At: s.now()}
	s.errMsg = ""
	s.publishLocked(context.Background())

	s.logger.Info("symbol decoded",
		logger.SymbolFormat(format.String()),
		logger.PayloadSize(len(text)))
}

func (s *Session) miss(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.stats.Frames++
	s.stats.Misses++
}

// lost handles a stream that stopped delivering frames. It runs on the
// decoder goroutine, so teardown happens in the background.
func (s *Session) lost(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen || !s.fsm.Is(StateReady) {
		s.mu.Unlock()
		return
	}
	stream, looping, l := s.stream, s.looping, s.lease
	s.stream, s.looping = nil, false
	s.toErrorLocked(err)
	s.mu.Unlock()

	s.logger.Error("camera lost", logger.Error(err))
	go l.settle(s.teardown(context.Background(), stream, looping))
}

// fail moves an acquisition that did not complete to the error state. It
// reports false when Stop already superseded the acquisition.
func (s *Session) fail(ctx context.Context, gen uint64, err error) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.acquiring, s.cancel = false, nil
	s.toErrorLocked(err)
	s.mu.Unlock()

	s.logger.ErrorContext(ctx, "camera initialization failed", logger.Error(err))
	return true
}

func (s *Session) toErrorLocked(err error) {
	if fireErr := s.fsm.Fire(context.Background(), eventFail, err); fireErr != nil {
		s.logger.Error("invalid scan session transition", logger.Error(fireErr))
		return
	}
	s.publishLocked(context.Background())
}

// teardown stops the decoder loop if it runs and closes stream. Close
// failures are logged and otherwise ignored.
func (s *Session) teardown(ctx context.Context, stream camera.Stream, stopLoop bool) func() {
	return func() {
		if stopLoop {
			s.decoder.Stop()
		}
		if stream == nil {
			return
		}
		info := stream.Info().String()
		if err := stream.Close(); err != nil {
			s.logger.WarnContext(ctx, "camera release failed", logger.Camera(info), logger.Error(err))
			return
		}
		s.logger.DebugContext(ctx, "camera released", logger.Camera(info))
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: s.id,
		State:     s.fsm.Current(),
		Error:     s.errMsg,
		Result:    s.result,
		Camera:    s.camera,
		Epoch:     s.epoch,
		Stats:     s.stats,
	}
}

// publishLocked is called with s.mu held so subscribers see snapshots in
// order. Broadcast never blocks.
func (s *Session) publishLocked(ctx context.Context) {
	_ = s.hub.Broadcast(ctx, broadcast.Message[Snapshot]{Data: s.snapshotLocked()})
}

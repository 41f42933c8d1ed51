package scan_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scanstation/pkg/camera"
	"github.com/dmitrymomot/scanstation/pkg/decoder"
	"github.com/dmitrymomot/scanstation/pkg/logger"
	"github.com/dmitrymomot/scanstation/svc/scan"
)

func newSession(t *testing.T, p *fakeProvider, d *fakeDecoder) *scan.Session {
	t.Helper()
	s, err := scan.New(p, d, scan.Config{Facing: camera.FacingEnvironment},
		scan.WithLogger(logger.Discard()),
		scan.WithID("test-session"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func startedSession(t *testing.T) (*scan.Session, *fakeProvider, *fakeDecoder) {
	t.Helper()
	p, d := &fakeProvider{}, &fakeDecoder{}
	s := newSession(t, p, d)
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, scan.StateReady, s.State())
	return s, p, d
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := scan.New(nil, &fakeDecoder{}, scan.Config{})
	assert.ErrorIs(t, err, scan.ErrNilProvider)

	_, err = scan.New(&fakeProvider{}, nil, scan.Config{})
	assert.ErrorIs(t, err, scan.ErrNilDecoder)

	s := newSession(t, &fakeProvider{}, &fakeDecoder{})
	assert.Equal(t, "test-session", s.ID())
	assert.Equal(t, scan.StateIdle, s.State())
	assert.True(t, s.Snapshot().Result.Empty())
}

func TestSession_Start(t *testing.T) {
	t.Parallel()

	s, p, d := startedSession(t)

	snap := s.Snapshot()
	assert.Equal(t, scan.StateReady, snap.State)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "fake 640x480 MJPG", snap.Camera)
	assert.EqualValues(t, 1, snap.Epoch)
	assert.Equal(t, []camera.Facing{camera.FacingEnvironment}, p.facing)
	assert.Equal(t, 1, d.starts)
}

func TestSession_StartTwiceAcquiresOnce(t *testing.T) {
	t.Parallel()

	s, p, d := startedSession(t)
	require.NoError(t, s.Start(context.Background()))

	opens, _, _, _ := p.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, d.starts)
}

func TestSession_ConcurrentStartAcquiresOnce(t *testing.T) {
	t.Parallel()

	p, d := &fakeProvider{}, &fakeDecoder{}
	s := newSession(t, p, d)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Start(context.Background()))
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return s.State() == scan.StateReady }, time.Second, time.Millisecond)
	opens, _, _, _ := p.counts()
	assert.Equal(t, 1, opens)
}

func TestSession_StopBeforeStart(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	s := newSession(t, p, &fakeDecoder{})

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	opens, closes, _, _ := p.counts()
	assert.Zero(t, opens)
	assert.Zero(t, closes)
	assert.Equal(t, scan.StateIdle, s.State())
}

func TestSession_ConcurrentStopReleasesOnce(t *testing.T) {
	t.Parallel()

	s, p, d := startedSession(t)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Stop())
		}()
	}
	wg.Wait()

	_, closes, open, _ := p.counts()
	assert.Equal(t, 1, closes)
	assert.Zero(t, open)
	assert.Equal(t, 1, d.stops)
	assert.Equal(t, scan.StateIdle, s.State())
}

func TestSession_PermissionDenied(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: &fs.PathError{Op: "open", Path: "/dev/video0", Err: syscall.EACCES}}
	d := &fakeDecoder{}
	s := newSession(t, p, d)

	err := s.Start(context.Background())
	require.ErrorIs(t, err, camera.ErrPermissionDenied)

	snap := s.Snapshot()
	assert.Equal(t, scan.StateError, snap.State)
	assert.Contains(t, snap.Error, "permission denied")
	assert.True(t, snap.Failed())
	assert.True(t, snap.Result.Empty())
	assert.False(t, snap.ShowResult())
	assert.Zero(t, d.starts)

	// No automatic retry and no way out of error except Stop.
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, scan.StateError, s.State())
	require.NoError(t, s.Stop())
	assert.Equal(t, scan.StateIdle, s.State())
}

func TestSession_AcquisitionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no camera", camera.ErrNoCamera, camera.ErrNoCamera},
		{"unsupported", fmt.Errorf("%w: 4k", camera.ErrUnsupported), camera.ErrUnsupported},
		{"unknown", errors.New("bus reset"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newSession(t, &fakeProvider{err: tt.err}, &fakeDecoder{})

			err := s.Start(context.Background())
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			snap := s.Snapshot()
			assert.Equal(t, scan.StateError, snap.State)
			assert.Equal(t, err.Error(), snap.Error)
		})
	}
}

func TestSession_DecoderStartFailureReleasesCamera(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	s := newSession(t, p, &fakeDecoder{startErr: decoder.ErrRunning})

	err := s.Start(context.Background())
	require.ErrorIs(t, err, decoder.ErrRunning)
	assert.Equal(t, scan.StateError, s.State())

	_, closes, open, _ := p.counts()
	assert.Equal(t, 1, closes)
	assert.Zero(t, open)
}

func TestSession_MissesThenResult(t *testing.T) {
	t.Parallel()

	s, _, d := startedSession(t)
	for range 50 {
		d.miss()
	}
	d.result("ABC123")

	snap := s.Snapshot()
	assert.Equal(t, scan.StateReady, snap.State)
	assert.Equal(t, "ABC123", snap.Result.Text)
	assert.Equal(t, decoder.FormatQRCode, snap.Result.Format)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Failed())
	assert.True(t, snap.ShowResult())
	assert.Equal(t, scan.Stats{Frames: 51, Misses: 50, Results: 1}, s.Stats())
}

func TestSession_LatestResultWins(t *testing.T) {
	t.Parallel()

	s, _, d := startedSession(t)
	d.result("FIRST")
	d.result("SECOND")

	assert.Equal(t, "SECOND", s.Snapshot().Result.Text)
}

func TestSession_OnDecoded(t *testing.T) {
	t.Parallel()

	t.Run("non-empty payload becomes the result", func(t *testing.T) {
		t.Parallel()
		s, _, _ := startedSession(t)
		for _, text := range []string{"x", "ABC123", " padded ", "https://example.com/a?b=c", "ünïcödé", "line\nbreak"} {
			s.OnDecoded(text)
			assert.Equal(t, text, s.Snapshot().Result.Text)
		}
	})

	t.Run("blank payload is ignored", func(t *testing.T) {
		t.Parallel()
		s, _, _ := startedSession(t)
		s.OnDecoded("kept")
		for _, text := range []string{"", "   ", "\t\n"} {
			s.OnDecoded(text)
			assert.Equal(t, "kept", s.Snapshot().Result.Text)
		}
	})

	t.Run("ignored while idle", func(t *testing.T) {
		t.Parallel()
		s := newSession(t, &fakeProvider{}, &fakeDecoder{})
		s.OnDecoded("nope")
		assert.True(t, s.Snapshot().Result.Empty())
	})

	t.Run("ignored in error state", func(t *testing.T) {
		t.Parallel()
		s := newSession(t, &fakeProvider{err: camera.ErrNoCamera}, &fakeDecoder{})
		require.Error(t, s.Start(context.Background()))
		s.OnDecoded("nope")
		assert.True(t, s.Snapshot().Result.Empty())
	})

	t.Run("miss is only counted", func(t *testing.T) {
		t.Parallel()
		s, _, _ := startedSession(t)
		s.OnDecodeMiss()
		snap := s.Snapshot()
		assert.Equal(t, scan.StateReady, snap.State)
		assert.Empty(t, snap.Error)
		assert.EqualValues(t, 1, s.Stats().Misses)
	})
}

func TestSession_StopKeepsLastResult(t *testing.T) {
	t.Parallel()

	s, _, d := startedSession(t)
	d.result("ABC123")
	require.NoError(t, s.Stop())

	snap := s.Snapshot()
	assert.Equal(t, scan.StateIdle, snap.State)
	assert.Equal(t, "ABC123", snap.Result.Text)
}

func TestSession_CallbacksAfterStopAreIgnored(t *testing.T) {
	t.Parallel()

	s, _, d := startedSession(t)
	h := d.current()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(context.Background()))

	h.OnResult(decoder.Symbol{Text: "stale"})
	h.OnFailure(errors.New("stale failure"))

	snap := s.Snapshot()
	assert.Equal(t, scan.StateReady, snap.State)
	assert.True(t, snap.Result.Empty())
}

func TestSession_Restart(t *testing.T) {
	t.Parallel()

	s, p, d := startedSession(t)
	d.result("ABC123")

	require.NoError(t, s.Restart(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, scan.StateReady, snap.State)
	assert.True(t, snap.Result.Empty())
	assert.EqualValues(t, 2, snap.Epoch)
	assert.Equal(t, scan.Stats{}, s.Stats())

	opens, closes, open, maxOpen := p.counts()
	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, open)
	assert.Equal(t, 1, maxOpen)
}

func TestSession_RestartFromError(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: camera.ErrPermissionDenied}
	s := newSession(t, p, &fakeDecoder{})
	require.Error(t, s.Start(context.Background()))

	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()

	require.NoError(t, s.Restart(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, scan.StateReady, snap.State)
	assert.Empty(t, snap.Error)
}

func TestSession_CameraLost(t *testing.T) {
	t.Parallel()

	s, p, d := startedSession(t)
	d.result("ABC123")
	d.fail(errors.New("device unplugged"))

	snap := s.Snapshot()
	assert.Equal(t, scan.StateError, snap.State)
	assert.Equal(t, "device unplugged", snap.Error)
	assert.False(t, snap.ShowResult())

	assert.Eventually(t, func() bool {
		_, closes, _, _ := p.counts()
		return closes == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	_, closes, _, _ := p.counts()
	assert.Equal(t, 1, closes)
}

func TestSession_ReleaseErrorIsNotReturned(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{closeErr: errors.New("ioctl failed")}
	s := newSession(t, p, &fakeDecoder{})
	require.NoError(t, s.Start(context.Background()))

	assert.NoError(t, s.Stop())
	_, closes, _, _ := p.counts()
	assert.Equal(t, 1, closes)
}

func TestSession_StopDuringStartReleasesLateHandle(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{gate: make(chan struct{}), opening: make(chan struct{})}
	s := newSession(t, p, &fakeDecoder{})

	errc := make(chan error, 1)
	go func() { errc <- s.Start(context.Background()) }()

	<-p.opening
	assert.Equal(t, scan.StateInitializing, s.State())
	require.NoError(t, s.Stop())
	assert.Equal(t, scan.StateIdle, s.State())

	close(p.gate)
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, scan.ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("start did not return")
	}

	opens, closes, open, _ := p.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
	assert.Zero(t, open)
	assert.Equal(t, scan.StateIdle, s.State())
}

func TestSession_StartWaitsForLateHandle(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{gate: make(chan struct{}), opening: make(chan struct{})}
	s := newSession(t, p, &fakeDecoder{})

	first := make(chan error, 1)
	go func() { first <- s.Start(context.Background()) }()
	<-p.opening
	require.NoError(t, s.Stop())

	p.mu.Lock()
	p.opening = nil
	p.mu.Unlock()

	second := make(chan error, 1)
	go func() { second <- s.Start(context.Background()) }()

	// The second start cannot open a camera while the first is unresolved.
	time.Sleep(20 * time.Millisecond)
	opens, _, _, _ := p.counts()
	assert.Zero(t, opens)

	close(p.gate)
	assert.ErrorIs(t, <-first, scan.ErrStopped)
	require.NoError(t, <-second)

	opens, closes, open, maxOpen := p.counts()
	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, open)
	assert.Equal(t, 1, maxOpen)
}

func TestSession_RapidCyclesNeverHoldTwoHandles(t *testing.T) {
	t.Parallel()

	p, d := &fakeProvider{}, &fakeDecoder{}
	s := newSession(t, p, d)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				if (i+j)%2 == 0 {
					_ = s.Start(context.Background())
				} else {
					_ = s.Stop()
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, s.Stop())

	opens, closes, open, maxOpen := p.counts()
	assert.Equal(t, opens, closes)
	assert.Zero(t, open)
	assert.LessOrEqual(t, maxOpen, 1)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Zero(t, d.overlaps)
	assert.False(t, d.running)
}

// readyRecorder keeps the camera attribute of every "scan session ready" record.
type readyRecorder struct {
	mu      sync.Mutex
	cameras []string
}

func (h *readyRecorder) Enabled(context.Context, slog.Level) bool { return true }
func (h *readyRecorder) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *readyRecorder) WithGroup(string) slog.Handler            { return h }

func (h *readyRecorder) Handle(_ context.Context, r slog.Record) error {
	if r.Message != "scan session ready" {
		return nil
	}
	cam := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "camera" {
			cam = a.Value.String()
		}
		return true
	})
	h.mu.Lock()
	h.cameras = append(h.cameras, cam)
	h.mu.Unlock()
	return nil
}

func TestSession_ReadyLogNamesCameraUnderConcurrentRestarts(t *testing.T) {
	t.Parallel()

	rec := &readyRecorder{}
	p, d := &fakeProvider{}, &fakeDecoder{}
	s, err := scan.New(p, d, scan.Config{Facing: camera.FacingEnvironment}, scan.WithLogger(slog.New(rec)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = s.Start(context.Background())
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				_ = s.Stop()
			}
		}()
	}
	wg.Wait()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(context.Background()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.cameras)
	for _, cam := range rec.cameras {
		assert.NotEmpty(t, cam)
	}
}

func TestSession_Subscribe(t *testing.T) {
	t.Parallel()

	s, _, d := startedSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Zero(t, s.Viewers())
	sub := s.Subscribe(ctx)
	assert.Equal(t, 1, s.Viewers())

	select {
	case msg := <-sub.Receive(ctx):
		assert.Equal(t, scan.StateReady, msg.Data.State)
	case <-time.After(time.Second):
		t.Fatal("no replayed snapshot")
	}

	d.result("ABC123")
	select {
	case msg := <-sub.Receive(ctx):
		assert.Equal(t, "ABC123", msg.Data.Result.Text)
	case <-time.After(time.Second):
		t.Fatal("result not published")
	}

	// Misses are never published.
	d.miss()
	select {
	case msg := <-sub.Receive(ctx):
		t.Fatalf("unexpected snapshot %+v", msg.Data)
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	require.Eventually(t, func() bool { return s.Viewers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scan.Message(nil))
	assert.Equal(t, "permission denied", scan.Message(camera.ErrPermissionDenied))
	assert.Equal(t, scan.DefaultErrorMessage, scan.Message(errors.New("")))
}

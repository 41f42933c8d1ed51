package scanner

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/scanstation/handler"
	"github.com/dmitrymomot/scanstation/pkg/broadcast"
	"github.com/dmitrymomot/scanstation/pkg/logger"
	"github.com/dmitrymomot/scanstation/svc/scan"
)

const statusTarget = "#status"

// Session is the part of scan.Session the scanner page drives.
type Session interface {
	Start(ctx context.Context) error
	Stop() error
	Restart(ctx context.Context) error
	Snapshot() scan.Snapshot
	Subscribe(ctx context.Context) broadcast.Subscriber[scan.Snapshot]
	Viewers() int
}

// Service serves the scanner page and keeps it in sync with a session.
type Service struct {
	cfg          Config
	session      Session
	views        *Views
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHandler replaces the default error page and toast handler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

// NewService creates the scanner module. A nil views uses DefaultViews.
func NewService(cfg Config, session Session, views *Views, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		session: session,
		views:   views.withDefaults(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("scanner"))
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger, handler.ErrorHandlerConfig{
			ErrorPage:  s.views.ErrorPage,
			ErrorToast: s.views.ErrorToast,
		})
	}
	return s
}

// Handle returns the module router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.wrap(s.page))
	r.Get("/status", s.wrap(s.status))
	r.Post("/start", s.command("start", s.start))
	r.Post("/stop", s.command("stop", s.stop))
	r.Post("/restart", s.command("restart", s.restart))
	r.Get("/api/status", s.wrap(s.statusJSON))

	return r
}

// Check fails while the session is in the error state.
func (s *Service) Check(context.Context) error {
	snap := s.session.Snapshot()
	if snap.Failed() {
		return errors.New(snap.Error)
	}
	return nil
}

func (s *Service) wrap(h handler.HandlerFunc[handler.Context, struct{}]) http.HandlerFunc {
	return handler.Wrap(h, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
}

// command wraps a lifecycle action so every request is logged with the state
// it found and the state it left.
func (s *Service) command(name string, h handler.HandlerFunc[handler.Context, struct{}]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
		handler.WithDecorators(s.logCommand(name)),
	)
}

func (s *Service) logCommand(name string) handler.Decorator[handler.Context, struct{}] {
	return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
		return func(ctx handler.Context, req struct{}) handler.Response {
			from := s.session.Snapshot().State
			resp := next(ctx, req)
			s.logger.InfoContext(ctx, "scan session command",
				logger.Event(name),
				logger.Transition(from.String(), s.session.Snapshot().State.String()))
			return resp
		}
	}
}

func (s *Service) statusParams(snap scan.Snapshot) StatusParams {
	return StatusParams{
		State:      snap.State,
		Loading:    snap.Loading(),
		Failed:     snap.Failed(),
		Error:      snap.Error,
		ShowResult: snap.ShowResult(),
		Result:     snap.Result.Text,
		Format:     FormatLabel(snap.Result.Format),
		Camera:     snap.Camera,
		StartURL:   s.cfg.url("/start"),
		StopURL:    s.cfg.url("/stop"),
		RestartURL: s.cfg.url("/restart"),
	}
}

func (s *Service) statusView(snap scan.Snapshot) templ.Component {
	return s.views.Status(s.statusParams(snap))
}

func (s *Service) page(_ handler.Context, _ struct{}) handler.Response {
	snap := s.session.Snapshot()
	status := s.statusView(snap)
	page := s.views.Page(PageParams{
		Title:       s.cfg.Title,
		State:       snap.State,
		Prompt:      s.cfg.Prompt,
		DatastarURL: s.cfg.DatastarURL,
		StatusURL:   s.cfg.url("/status"),
		Status:      status,
	})
	return handler.TemplPartial(status, page, handler.WithTarget(statusTarget))
}

// status streams every session snapshot to the page until the client leaves.
// The state signal follows each patch so elements outside the status region
// can react to it.
func (s *Service) status(_ handler.Context, _ struct{}) handler.Response {
	return handler.SSE(func(stream handler.StreamContext) error {
		sub := s.session.Subscribe(stream)
		defer sub.Close()

		updates := sub.Receive(stream)
		for {
			select {
			case <-stream.Done():
				return nil
			case msg, ok := <-updates:
				if !ok {
					return nil
				}
				err := stream.SendComponent(s.statusView(msg.Data), handler.WithTarget(statusTarget))
				if err == nil {
					err = stream.SendSignals(map[string]any{stateSignal: msg.Data.State})
				}
				if err != nil {
					if stream.Err() != nil {
						return nil
					}
					return err
				}
			}
		}
	})
}

// Camera acquisition outlives the request that triggered it.
func (s *Service) start(ctx handler.Context, _ struct{}) handler.Response {
	s.settled(ctx, "start", s.session.Start(context.WithoutCancel(ctx)))
	return s.statusResponse(ctx)
}

func (s *Service) restart(ctx handler.Context, _ struct{}) handler.Response {
	s.settled(ctx, "restart", s.session.Restart(context.WithoutCancel(ctx)))
	return s.statusResponse(ctx)
}

func (s *Service) stop(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.session.Stop(); err != nil {
		s.logger.ErrorContext(ctx, "failed to stop scan session", logger.Error(err))
	}
	return s.statusResponse(ctx)
}

// settled logs the outcome of an acquisition. Failures are already part of
// the snapshot the response renders.
func (s *Service) settled(ctx context.Context, action string, err error) {
	if err == nil || errors.Is(err, scan.ErrStopped) {
		return
	}
	s.logger.DebugContext(ctx, "scan session did not become ready",
		logger.Event(action),
		logger.Error(err))
}

func (s *Service) statusResponse(ctx handler.Context) handler.Response {
	if !handler.IsDataStar(ctx.Request()) {
		return handler.Redirect(s.cfg.url("/"))
	}
	return handler.Templ(s.statusView(s.session.Snapshot()), handler.WithTarget(statusTarget))
}

// StatusResponse is the JSON view of a session.
type StatusResponse struct {
	SessionID string          `json:"session_id"`
	State     string          `json:"state"`
	Error     string          `json:"error,omitempty"`
	Camera    string          `json:"camera,omitempty"`
	Epoch     uint64          `json:"epoch"`
	Viewers   int             `json:"viewers"`
	Result    *ResultResponse `json:"result,omitempty"`
	Stats     StatsResponse   `json:"stats"`
}

// ResultResponse is the JSON view of a decoded payload.
type ResultResponse struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
	At     string `json:"at,omitempty"`
}

// StatsResponse is the JSON view of decode counters.
type StatsResponse struct {
	Frames  uint64 `json:"frames"`
	Misses  uint64 `json:"misses"`
	Results uint64 `json:"results"`
}

func (s *Service) statusJSON(_ handler.Context, _ struct{}) handler.Response {
	snap := s.session.Snapshot()
	resp := StatusResponse{
		SessionID: snap.SessionID,
		State:     snap.State.String(),
		Error:     snap.Error,
		Camera:    snap.Camera,
		Epoch:     snap.Epoch,
		Viewers:   s.session.Viewers(),
		Stats: StatsResponse{
			Frames:  snap.Stats.Frames,
			Misses:  snap.Stats.Misses,
			Results: snap.Stats.Results,
		},
	}
	if snap.ShowResult() {
		resp.Result = &ResultResponse{Text: snap.Result.Text, Format: string(snap.Result.Format)}
		if !snap.Result.At.IsZero() {
			resp.Result.At = snap.Result.At.UTC().Format(time.RFC3339Nano)
		}
	}
	return handler.JSON(resp)
}

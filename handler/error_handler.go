package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/scanstation/pkg/logger"
)

const genericErrorMessage = "An error occurred processing your request"

// ErrorPageParams contains data for rendering error pages.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorToastParams contains data for rendering error toasts.
type ErrorToastParams struct {
	Message   string
	Type      string // "error", "warning" or "info"
	RequestID string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders the page for regular requests.
	ErrorPage func(ErrorPageParams) templ.Component
	// ErrorToast renders the notification for DataStar requests.
	ErrorToast func(ErrorToastParams) templ.Component
	// ToastTarget defaults to "#toast-container".
	ToastTarget string
	// ToastMode defaults to PatchPrepend.
	ToastMode datastar.ElementPatchMode
}

// failure is an error resolved to what the client is shown.
type failure struct {
	status  int
	message string
}

func newFailure(err error) failure {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return failure{status: httpErr.Code, message: httpErr.Key}
	}
	// Internal details stay in the log.
	return failure{status: http.StatusInternalServerError, message: genericErrorMessage}
}

func (f failure) clientError() bool {
	return f.status >= http.StatusBadRequest && f.status < http.StatusInternalServerError
}

func (f failure) kind() string {
	switch {
	case f.clientError():
		return "warning"
	case f.status >= http.StatusInternalServerError:
		return "error"
	default:
		return "info"
	}
}

func (f failure) level() slog.Level {
	if f.clientError() {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// NewErrorHandler returns an ErrorHandler that logs err and renders an error
// page, or a toast for DataStar requests.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("error_handler"))
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toast-container"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = PatchPrepend
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		reqID := middleware.GetReqID(r.Context())
		f := newFailure(err)

		log.LogAttrs(r.Context(), f.level(), "request failed",
			logger.RequestID(reqID),
			logger.Error(err),
			slog.Int("status_code", f.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("is_datastar", IsDataStar(r)),
		)

		if IsDataStar(r) {
			renderToast(ctx, cfg, f, reqID, log)
			return
		}
		renderPage(ctx, cfg, f, reqID, log)
	}
}

// renderToast patches a notification into the page. The SSE stream has
// already committed a 200 status.
func renderToast(ctx Context, cfg ErrorHandlerConfig, f failure, reqID string, log *slog.Logger) {
	if cfg.ErrorToast == nil {
		log.Warn("no error toast view configured", logger.RequestID(reqID))
		return
	}
	toast := cfg.ErrorToast(ErrorToastParams{Message: f.message, Type: f.kind(), RequestID: reqID})
	resp := Templ(toast, WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode))
	if err := resp.Render(ctx.ResponseWriter(), ctx.Request()); err != nil {
		log.Error("failed to render error toast", logger.RequestID(reqID), logger.Error(err))
	}
}

func renderPage(ctx Context, cfg ErrorHandlerConfig, f failure, reqID string, log *slog.Logger) {
	w := ctx.ResponseWriter()
	if cfg.ErrorPage == nil {
		http.Error(w, f.message, f.status)
		return
	}
	page := cfg.ErrorPage(ErrorPageParams{
		Error:      f.message,
		StatusCode: f.status,
		RequestID:  reqID,
		RetryURL:   ctx.Request().URL.Path,
	})
	if err := TemplStatus(f.status, page).Render(w, ctx.Request()); err != nil {
		log.Error("failed to render error page", logger.RequestID(reqID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

package scanner

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/scanstation/handler"
	"github.com/dmitrymomot/scanstation/svc/scan"
)

// Views renders the scanner pages. Any nil field falls back to the default.
type Views struct {
	Page       func(PageParams) templ.Component
	Status     func(StatusParams) templ.Component
	ErrorPage  func(handler.ErrorPageParams) templ.Component
	ErrorToast func(handler.ErrorToastParams) templ.Component
}

// PageParams contains data for rendering the scanner page.
type PageParams struct {
	Title       string
	State       scan.State
	Prompt      string
	DatastarURL string
	StatusURL   string
	Status      templ.Component
}

// StatusParams contains data for rendering the status region of the page.
type StatusParams struct {
	State      scan.State
	Loading    bool
	Failed     bool
	Error      string
	ShowResult bool
	Result     string
	Format     string
	Camera     string
	StartURL   string
	StopURL    string
	RestartURL string
}

// Idle reports whether the scanner is stopped.
func (p StatusParams) Idle() bool { return p.State == scan.StateIdle }

// Ready reports whether the scanner is decoding frames.
func (p StatusParams) Ready() bool { return p.State == scan.StateReady }

// DefaultViews returns the built-in views.
func DefaultViews() *Views {
	return &Views{
		Page:       pageView,
		Status:     statusView,
		ErrorPage:  errorPageView,
		ErrorToast: errorToastView,
	}
}

func (v *Views) withDefaults() *Views {
	d := DefaultViews()
	if v == nil {
		return d
	}
	out := *v
	if out.Page == nil {
		out.Page = d.Page
	}
	if out.Status == nil {
		out.Status = d.Status
	}
	if out.ErrorPage == nil {
		out.ErrorPage = d.ErrorPage
	}
	if out.ErrorToast == nil {
		out.ErrorToast = d.ErrorToast
	}
	return &out
}

// stateSignal is the DataStar signal mirroring the session state outside the
// status region.
const stateSignal = "scanState"

func pageView(p PageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string]any{stateSignal: p.State})
		if err != nil {
			return err
		}

		var m markup
		m.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.elem("title", p.Title)
		m.open("script", attr{"type", "module"}, attr{"src", p.DatastarURL})
		m.close("script")
		m.raw(`<style>` + pageStyle + `</style></head><body>`)
		m.open("main",
			attr{"class", "scanner"},
			attr{"data-signals", string(signals)},
			attr{"data-on-load", "@get(" + jsString(p.StatusURL) + ")"})
		m.elem("h1", p.Title)
		m.open("div",
			attr{"class", "viewfinder"},
			attr{"aria-hidden", "true"},
			attr{"data-state", p.State.String()},
			attr{"data-attr-data-state", "$" + stateSignal})
		m.raw(`<div class="region"></div></div>`)
		m.elem("p", p.Prompt, attr{"class", "prompt"})
		if err := m.flush(w); err != nil {
			return err
		}
		if p.Status != nil {
			if err := p.Status.Render(ctx, w); err != nil {
				return err
			}
		}
		m.raw(`<div id="toast-container"></div></main></body></html>`)
		return m.flush(w)
	})
}

func statusView(p StatusParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var m markup
		m.open("div", attr{"id", "status"}, attr{"class", "status"}, attr{"data-state", p.State.String()})
		switch {
		case p.Loading:
			m.raw(`<p class="loading" role="status" aria-busy="true">Starting camera…</p>`)
		case p.Failed:
			m.raw(`<div class="error-banner" role="alert">`)
			m.elem("p", "⚠️ "+p.Error)
			m.actionForm(p.RestartURL, "Try again")
			m.raw(`</div>`)
		case p.Ready():
			m.raw(`<p class="ready" role="status">Camera ready`)
			if p.Camera != "" {
				m.raw(" ")
				m.elem("span", p.Camera, attr{"class", "camera"})
			}
			m.raw(`</p>`)
			m.actionForm(p.StopURL, "Stop")
		default:
			m.raw(`<p class="idle" role="status">Scanner stopped</p>`)
			m.actionForm(p.StartURL, "Start")
		}
		if p.ShowResult {
			m.raw(`<section class="scanned-data"><h2>Scanned Data:</h2>`)
			m.elem("p", p.Result, attr{"class", "payload"})
			if p.Format != "" {
				m.elem("p", p.Format, attr{"class", "format"})
			}
			m.raw(`</section>`)
		}
		m.raw(`</div>`)
		return m.flush(w)
	})
}

func errorPageView(p handler.ErrorPageParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var m markup
		m.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Error</title>`)
		m.raw(`<style>` + pageStyle + `</style></head><body><main class="scanner error-page">`)
		m.elem("h1", strconv.Itoa(p.StatusCode))
		m.elem("p", p.Error)
		if p.RequestID != "" {
			m.elem("p", "Request ID: "+p.RequestID, attr{"class", "request-id"})
		}
		if p.RetryURL != "" {
			m.elem("a", "Try again", attr{"href", p.RetryURL})
		}
		m.raw(`</main></body></html>`)
		return m.flush(w)
	})
}

func errorToastView(p handler.ErrorToastParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var m markup
		m.elem("div", p.Message, attr{"class", "toast toast-" + p.Type}, attr{"role", "alert"})
		return m.flush(w)
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#111;color:#eee}` +
	`.scanner{max-width:32rem;margin:0 auto;padding:1rem;text-align:center}` +
	`.viewfinder{position:relative;aspect-ratio:4/3;background:#000;border-radius:.5rem}` +
	`.viewfinder .region{position:absolute;inset:10%;border:2px solid #555}` +
	`.viewfinder[data-state=ready] .region{border-color:#3c9}` +
	`.viewfinder[data-state=error] .region{border-color:#c33}` +
	`.error-banner{background:#611;padding:.75rem;border-radius:.5rem}` +
	`.scanned-data{margin-top:1rem;padding:.75rem;background:#222;border-radius:.5rem;word-break:break-all}` +
	`.toast{padding:.5rem;margin-top:.5rem;background:#611}`

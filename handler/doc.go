// Package handler adapts typed handler functions to net/http.
//
// A HandlerFunc receives a Context and a decoded request value and returns a
// Response. Responses render HTML through templ components, JSON, redirects,
// or a long lived Server-Sent Events stream. DataStar requests are
// detected automatically and receive element patches instead of full pages:
//
//	page := handler.HandlerFunc[handler.Context, struct{}](
//		func(ctx handler.Context, _ struct{}) handler.Response {
//			return handler.TemplPartial(views.Status(snap), views.Page(snap),
//				handler.WithTarget("#status"))
//		},
//	)
//	r.Get("/", handler.Wrap(page, handler.WithErrorHandler[handler.Context, struct{}](onError)))
//
// Decorators passed to WithDecorators wrap the handler, outermost first.
// Errors returned from rendering are passed to the configured ErrorHandler.
// NewErrorHandler builds one that logs with the chi request ID and renders an
// error page or a DataStar toast.
package handler

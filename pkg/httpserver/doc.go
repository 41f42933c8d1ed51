// Package httpserver runs an http.Handler with graceful shutdown, configured
// timeouts and health checks.
//
// Run blocks until its context is cancelled, then shuts the server down
// within the configured deadline. Request contexts are derived from a base
// context that is cancelled when shutdown begins, so long lived streams such
// as Server-Sent Events end promptly instead of holding shutdown open.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.Liveness())
//	r.Get("/readyz", httpserver.Readiness(log, sessionHealthy))
//	if err := srv.Run(ctx, r); err != nil {
//		return err
//	}
//
// Listen errors are wrapped with ErrStart and shutdown errors with
// ErrShutdown.
package httpserver

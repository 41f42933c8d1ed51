// Package logger builds *slog.Logger instances for the scan station and holds
// the attribute helpers used across packages so keys stay consistent.
//
// New creates a text or JSON handler, applies static attributes, and wraps
// the result in LogHandlerDecorator, which pulls request-scoped values (for
// example the router's request id) out of the context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "scanstation"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "camera acquired",
//	    logger.SessionID(id),
//	    logger.Camera(stream.Info().Name),
//	)
//
// Attribute helpers return an empty slog.Attr for nil inputs, which slog
// drops silently.
package logger

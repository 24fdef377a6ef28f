// Package logger provides structured logging helpers built on Go's standard
// slog package: a small factory for configured loggers and a set of type-safe
// attribute constructors for the certificate lifecycle domain.
//
// Attribute helpers follow the empty-Attr pattern: passing a nil error or an
// empty string yields an attribute that slog drops, so call sites never need
// nil checks:
//
//	log := logger.New(logger.WithLevel(slog.LevelDebug))
//	log.Info("certificate acquired",
//		logger.Component("resolver"),
//		logger.Domain("example.com"),
//		logger.Mode("acme"),
//	)
//
// Downgrades between acquisition paths must be logged with the Fallback
// attribute so the operator can tell which trust level the resulting
// certificate has.
package logger

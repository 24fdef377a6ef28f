package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Domain creates an attribute for certificate domain names.
func Domain(domain string) slog.Attr {
	if domain == "" {
		return slog.Attr{}
	}
	return slog.String("domain", domain)
}

// Mode creates an attribute for acquisition modes.
func Mode(mode string) slog.Attr {
	if mode == "" {
		return slog.Attr{}
	}
	return slog.String("mode", mode)
}

// Container creates an attribute for container names.
func Container(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("container", name)
}

// Path creates an attribute for filesystem paths.
func Path(path string) slog.Attr {
	if path == "" {
		return slog.Attr{}
	}
	return slog.String("path", path)
}

// Days creates an attribute for day counts such as validity periods.
func Days(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// KeySize creates an attribute for RSA key bit lengths.
func KeySize(bits int) slog.Attr {
	return slog.Int("key_size", bits)
}

// Fallback records a downgrade from one acquisition path to another.
// Silent downgrades are a defect; every fallback must carry this attribute.
func Fallback(from, to string) slog.Attr {
	return slog.Attr{Key: "fallback", Value: slog.GroupValue(
		slog.String("from", from),
		slog.String("to", to),
	)}
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

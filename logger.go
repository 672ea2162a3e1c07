package excelview

import "log/slog"

// Logger provides structured logging for the engine.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger is a Logger that discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// SlogLogger wraps *slog.Logger to satisfy Logger
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger returns a Logger writing through l
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (a *SlogLogger) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *SlogLogger) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *SlogLogger) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *SlogLogger) Error(msg string, args ...any) { a.l.Error(msg, args...) }

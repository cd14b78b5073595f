package core

import (
	"log/slog"

	"assetcore/pkg/domain"
)

// NewSlogLogger adapts a *slog.Logger to the domain logging contract. A nil
// logger yields the no-op implementation.
func NewSlogLogger(logger *slog.Logger) domain.Logger {
	if logger == nil {
		return domain.NopLogger()
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

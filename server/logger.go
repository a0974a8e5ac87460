package server

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger создает структурированный логгер в формате JSON
func NewLogger(level slog.Level) *slog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo создает JSON-логгер, пишущий в w
func NewLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // файл и строка источника
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

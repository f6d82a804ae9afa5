package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/accountsvc/apiserver/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" (or ENV=dev) writes
// human-readable lines; anything else writes JSON.
func New(cfg config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Log.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if strings.EqualFold(cfg.Log.Format, "console") || cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// RequestLogger returns chi middleware that logs one line per request.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&logFormatter{logger: logger})
}

type logFormatter struct {
	logger zerolog.Logger
}

func (f *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{
		logger: f.logger.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Logger(),
	}
}

type logEntry struct {
	logger zerolog.Logger
}

func (e *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra any) {
	event := e.logger.Info()
	switch {
	case status >= http.StatusInternalServerError:
		event = e.logger.Error()
	case status >= http.StatusBadRequest:
		event = e.logger.Warn()
	}
	event.
		Int("status", status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Msg("request")
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.logger.Error().
		Interface("panic", v).
		Bytes("stack", stack).
		Msg("request panicked")
}

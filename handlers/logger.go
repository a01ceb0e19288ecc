package handlers

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger

// InitLogger initializes the structured logger
func InitLogger(development bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if development {
		// Pretty console output for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	log.Logger = logger
}

// GetLogger returns the configured logger
func GetLogger() *zerolog.Logger {
	return &logger
}

// RequestLogger is a middleware that logs HTTP requests
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)

			latency := time.Since(start)

			event := logger.Info()
			if err != nil {
				event = logger.Error().Err(err)
			}

			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Dur("latency", latency).
				Int64("bytes_out", res.Size)

			if p := GetPrincipal(c); p != nil {
				event.Str("user_email", p.Email)
			}

			event.Msg("request")

			return err
		}
	}
}

// ShareLogger logs capability-token lifecycle events
type ShareLogger struct {
	logger zerolog.Logger
}

// NewShareLogger creates a new share logger
func NewShareLogger() *ShareLogger {
	return &ShareLogger{
		logger: logger.With().Str("component", "share").Logger(),
	}
}

// LogIssued logs a newly minted share token
func (l *ShareLogger) LogIssued(email string, pdfID int64, token string) {
	l.logger.Info().
		Str("operation", "issue").
		Str("owner", email).
		Int64("pdf_id", pdfID).
		Str("token", token).
		Msg("share token issued")
}

// LogResolved logs an anonymous access via share token
func (l *ShareLogger) LogResolved(token string, pdfID int64, found bool) {
	l.logger.Info().
		Str("operation", "resolve").
		Str("token", token).
		Int64("pdf_id", pdfID).
		Bool("found", found).
		Msg("share token resolved")
}

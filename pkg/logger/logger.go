// Package logger provides the engine's structured logging wrapper
// around zerolog: a process-wide singleton logger plus a roster-domain
// logger carrying event helpers for the solve lifecycle.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is a logging severity threshold.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config controls the process-wide logger's level, encoding, and sink.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns console-formatted, info-level logging to stdout.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init sets up the process-wide logger. Only the first call takes
// effect; later calls are no-ops.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the process-wide logger, initializing it with
// DefaultConfig on first use if Init was never called.
func Get() *zerolog.Logger {
	Init(DefaultConfig()) // no-op once Init has run
	return &logger
}

// WithContext derives a logger carrying request/org identifiers found
// on ctx, when present.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if orgID, ok := ctx.Value("org_id").(string); ok {
		l = l.With().Str("org_id", orgID).Logger()
	}

	return &l
}

// Debug starts a debug-level log event.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info starts an info-level log event.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn starts a warn-level log event.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error starts an error-level log event.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal starts a fatal-level log event; zerolog exits the process
// after it is logged.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error-level event pre-populated with err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField derives a logger with one extra structured field attached
// to every subsequent event.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields derives a logger with several extra structured fields
// attached to every subsequent event.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// RosterLogger is the roster engine's domain logger: the process-wide
// logger tagged with component=roster, plus event helpers for the
// solve lifecycle (ICPMP, solver, constraint violations).
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger creates a RosterLogger.
func NewRosterLogger() *RosterLogger {
	l := Get().With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// SolveStarted records the beginning of one solve run.
func (l *RosterLogger) SolveStarted(runID string, employees, slots int) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("slots", slots).
		Msg("solve started")
}

// SolveCompleted records a finished solve run's duration and score.
func (l *RosterLogger) SolveCompleted(runID string, duration time.Duration, score float64) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Float64("score", score).
		Msg("solve completed")
}

// ConstraintViolation records one unresolved hard or soft violation.
func (l *RosterLogger) ConstraintViolation(constraintType, detail string) {
	l.base.Warn().
		Str("constraint_type", constraintType).
		Str("detail", detail).
		Msg("constraint violation")
}

// ICPMPRequirement records one requirement's preprocessing outcome.
func (l *RosterLogger) ICPMPRequirement(requirementID string, lowerBound, selected int) {
	l.base.Info().
		Str("requirement_id", requirementID).
		Int("lower_bound", lowerBound).
		Int("selected", selected).
		Msg("ICPMP requirement processed")
}


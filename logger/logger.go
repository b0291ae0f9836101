package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with component context.
type Logger struct {
	logger    zerolog.Logger
	component string
}

// New builds a logger from cfg, tagged with a component name when one is
// given. Unknown level names fall back to info.
func New(cfg *Config, component string) *Logger {
	zl := baseLogger(cfg).Level(levelFor(cfg.Level))

	zc := zl.With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	if component != "" {
		zc = zc.Str(FieldComponent, component)
	}
	return &Logger{logger: zc.Logger(), component: component}
}

// NewDefault creates a console logger at info level.
func NewDefault(component string) *Logger {
	return New(&Config{Level: "info", Format: "console", Output: "stdout", Timestamp: true}, component)
}

// NewFromEnv builds the configuration from LOG_* environment variables,
// falling back to the defaults where unset.
func NewFromEnv(component string) *Logger {
	cfg := &Config{
		Level:     envOr("LOG_LEVEL", "info"),
		Format:    envOr("LOG_FORMAT", "console"),
		Output:    envOr("LOG_OUTPUT", "stdout"),
		NoColor:   envOr("LOG_NO_COLOR", "false") == "true",
		Timestamp: envOr("LOG_TIMESTAMP", "true") == "true",
	}
	return New(cfg, component)
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:    l.logger.With().Str(FieldComponent, name).Logger(),
		component: name,
	}
}

// WithFields returns a logger carrying the given fields on every line.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), component: l.component}
}

// WithError returns a logger carrying an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:    l.logger.With().Err(err).Logger(),
		component: l.component,
	}
}

// Debug logs at debug level with optional field maps.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

// Info logs at info level with optional field maps.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

// Warn logs at warn level with optional field maps.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

// Error logs at error level with optional field maps.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

// Fatal logs at fatal level and exits.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Fatal(), msg, fields)
}

// --- Global logger ---

var globalLogger *Logger

// Init replaces the global logger with one built from cfg and mirrors its
// level onto zerolog's package level.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	globalLogger = New(&cfg, "refinekit")
	zerolog.SetGlobalLevel(levelFor(cfg.Level))
}

// GetGlobalLogger returns the global logger, creating a default one if
// Init has not run.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("refinekit")
	}
	return globalLogger
}

// Get returns a component-tagged logger derived from the global logger.
func Get(component string) *Logger {
	return GetGlobalLogger().WithComponent(component)
}

// Package-level logging delegates to the global logger.

func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

// --- internal helpers ---

// emit attaches every field map to the event and writes it.
func emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// baseLogger picks the output format.
func baseLogger(cfg *Config) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		return newConsoleLogger(cfg)
	}
	return zerolog.New(outputWriter(cfg.Output))
}

// levelFor parses a level name, defaulting to info.
func levelFor(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// outputWriter maps a configured output name to its file handle.
func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newConsoleLogger builds a human-oriented writer with short level tags.
func newConsoleLogger(cfg *Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        outputWriter(cfg.Output),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			return levelTag(fmt.Sprint(i), cfg.NoColor)
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprint(i) + ":"
		},
	})
}

// levelTag renders a zerolog level name as a short bracketed tag,
// colorized unless noColor is set.
func levelTag(level string, noColor bool) string {
	lvl := strings.ToUpper(level)
	tag := map[string]string{
		"TRACE": "[TRC]",
		"DEBUG": "[DBG]",
		"INFO":  "[INF]",
		"WARN":  "[WRN]",
		"ERROR": "[ERR]",
		"FATAL": "[FTL]",
	}[lvl]
	if tag == "" {
		tag = "[" + lvl + "]"
	}
	if noColor {
		return tag
	}
	color := map[string]string{
		"[TRC]": "\033[90m",
		"[DBG]": "\033[36m",
		"[INF]": "\033[32m",
		"[WRN]": "\033[33m",
		"[ERR]": "\033[31m",
		"[FTL]": "\033[35m",
	}[tag]
	if color == "" {
		return tag
	}
	return color + tag + "\033[0m"
}

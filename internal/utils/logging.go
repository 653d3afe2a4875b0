package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level        LogLevel  `yaml:"level" mapstructure:"level"`
	Format       LogFormat `yaml:"format" mapstructure:"format"`
	ReportCaller bool      `yaml:"-" mapstructure:"-"`
	Output       io.Writer `yaml:"-" mapstructure:"-"`
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config LoggerConfig) *Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set format
	switch config.Format {
	case LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	logger.SetReportCaller(config.ReportCaller)

	// Reports go to stdout, so logs default to stderr
	if config.Output != nil {
		logger.SetOutput(config.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	return &Logger{Logger: logger}
}

// NewDefaultLogger creates a logger with default configuration
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerConfig{
		Level:  LogLevelInfo,
		Format: LogFormatText,
		Output: os.Stderr,
	})
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// ParseLogLevel parses a log level string
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", level)
	}
}

// ParseLogFormat parses a log format string
func ParseLogFormat(format string) (LogFormat, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return LogFormatText, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return LogFormatText, fmt.Errorf("invalid log format: %s (valid: text, json)", format)
	}
}

// WithFile adds the input file path to the log entry
func (l *Logger) WithFile(component, path string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"component": component,
		"file":      path,
	})
}

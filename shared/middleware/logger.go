package middleware

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	QUIET
)

// stdout carries the record stream, so every log line goes to stderr.
var logger = newLogger(os.Stderr)

var currentLogLevel LogLevel = INFO

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableSorting:   true,
		QuoteEmptyFields: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogOutput redirects log output, mostly for tests
func SetLogOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetLogLevel sets the current logging level
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
	switch level {
	case DEBUG:
		logger.SetLevel(logrus.DebugLevel)
	case INFO:
		logger.SetLevel(logrus.InfoLevel)
	case WARN:
		logger.SetLevel(logrus.WarnLevel)
	case ERROR:
		logger.SetLevel(logrus.ErrorLevel)
	case QUIET:
		logger.SetLevel(logrus.PanicLevel)
	}
}

// SetLogLevelFromString sets the log level from a string
func SetLogLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		SetLogLevel(DEBUG)
	case "info":
		SetLogLevel(INFO)
	case "warn", "warning":
		SetLogLevel(WARN)
	case "error":
		SetLogLevel(ERROR)
	case "quiet":
		SetLogLevel(QUIET)
	default:
		SetLogLevel(INFO)
	}
}

// CurrentLogLevel returns the active logging level
func CurrentLogLevel() LogLevel {
	return currentLogLevel
}

// shouldLog checks if a message should be logged at the given level
func shouldLog(level LogLevel) bool {
	return level >= currentLogLevel && currentLogLevel != QUIET
}

// LogDebug logs a debug message
func LogDebug(component, message string, args ...interface{}) {
	if shouldLog(DEBUG) {
		logger.WithField("component", component).Debugf(message, args...)
	}
}

// LogInfo logs an info message
func LogInfo(component, message string, args ...interface{}) {
	if shouldLog(INFO) {
		logger.WithField("component", component).Infof(message, args...)
	}
}

// LogWarn logs a warning message
func LogWarn(component, message string, args ...interface{}) {
	if shouldLog(WARN) {
		logger.WithField("component", component).Warnf(message, args...)
	}
}

// LogError logs an error message
func LogError(component, message string, args ...interface{}) {
	if shouldLog(ERROR) {
		logger.WithField("component", component).Errorf(message, args...)
	}
}

// InitLogger initializes the logger with environment variables
func InitLogger() {
	// Check for LOG_LEVEL environment variable
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		SetLogLevelFromString(logLevel)
	}
}

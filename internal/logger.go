package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelTags = [...]string{"ERROR", "WARN", "INFO", "DEBUG"}

var (
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// String returns the tag written in front of messages of this level
func (l LogLevel) String() string {
	if l < LogLevelError || l > LogLevelDebug {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelTags[l]
}

// ParseLogLevel reads a level name such as "warn" or "DEBUG"
func ParseLogLevel(name string) (LogLevel, error) {
	for i, tag := range levelTags {
		if strings.EqualFold(strings.TrimSpace(name), tag) {
			return LogLevel(i), nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q (use error, warn, info or debug)", name)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output, mostly for tests and the API server.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logAt(level LogLevel, format string, args ...interface{}) {
	if logLevel >= level {
		logger.Printf("["+level.String()+"] "+format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logAt(LogLevelError, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logAt(LogLevelWarn, format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logAt(LogLevelInfo, format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logAt(LogLevelDebug, format, args...)
}
